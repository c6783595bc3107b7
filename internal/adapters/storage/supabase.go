package storage

// supabase.go: backend remoto sobre la API REST (PostgREST) de Supabase.
//
// Tabla `portfolios(name TEXT PRIMARY KEY, data JSONB)`. Lectura por point
// lookup sobre `name`; escritura como upsert con on_conflict=name. No hay
// reintentos: un fallo se devuelve al Ledger, que lo registra y sigue.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/polysim/internal/domain"
)

const (
	defaultTable     = "portfolios"
	restPath         = "/rest/v1/"
	supabaseRatePerS = 10
)

// SupabaseStorage implementa ports.SnapshotStore contra una tabla remota.
type SupabaseStorage struct {
	http    *http.Client
	baseURL string
	key     string
	table   string
	profile string
	limiter *rate.Limiter
}

// NewSupabaseStorage crea el backend remoto. baseURL es la URL del proyecto.
func NewSupabaseStorage(baseURL, key, table, profile string) (*SupabaseStorage, error) {
	if baseURL == "" || key == "" {
		return nil, fmt.Errorf("storage.NewSupabaseStorage: url and key are required")
	}
	if table == "" {
		table = defaultTable
	}
	return &SupabaseStorage{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		table:   table,
		profile: profile,
		limiter: rate.NewLimiter(supabaseRatePerS, 5),
	}, nil
}

// ForProfile devuelve un handle para otro perfil con el mismo cliente y limiter.
func (s *SupabaseStorage) ForProfile(profile string) *SupabaseStorage {
	cp := *s
	cp.profile = profile
	return &cp
}

type portfolioRow struct {
	Name string          `json:"name,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (s *SupabaseStorage) Load(ctx context.Context) (domain.Snapshot, error) {
	q := url.Values{}
	q.Set("select", "data")
	q.Set("name", "eq."+s.profile)
	q.Set("limit", "1")

	var rows []portfolioRow
	if err := s.do(ctx, http.MethodGet, q, nil, &rows); err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.SupabaseStorage.Load: %q: %w", s.profile, err)
	}
	if len(rows) == 0 || len(rows[0].Data) == 0 || string(rows[0].Data) == "null" {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}

	snap, err := decodeSnapshot(rows[0].Data)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.SupabaseStorage.Load: %q: %w", s.profile, err)
	}
	return snap, nil
}

func (s *SupabaseStorage) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := encodeSnapshot(snap, false)
	if err != nil {
		return fmt.Errorf("storage.SupabaseStorage.Save: encode: %w", err)
	}
	body, err := json.Marshal([]portfolioRow{{Name: s.profile, Data: data}})
	if err != nil {
		return fmt.Errorf("storage.SupabaseStorage.Save: marshal row: %w", err)
	}

	q := url.Values{}
	q.Set("on_conflict", "name")
	if err := s.do(ctx, http.MethodPost, q, body, nil); err != nil {
		return fmt.Errorf("storage.SupabaseStorage.Save: %q: %w", s.profile, err)
	}
	return nil
}

func (s *SupabaseStorage) ListProfiles(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("select", "name")
	q.Set("order", "name.asc")

	var rows []portfolioRow
	if err := s.do(ctx, http.MethodGet, q, nil, &rows); err != nil {
		return nil, fmt.Errorf("storage.SupabaseStorage.ListProfiles: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

func (s *SupabaseStorage) Close() error { return nil }

// do ejecuta una request contra la tabla. out=nil descarta el body.
func (s *SupabaseStorage) do(ctx context.Context, method string, q url.Values, body []byte, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := s.baseURL + restPath + url.PathEscape(s.table) + "?" + q.Encode()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("supabase %s %d: %s", method, resp.StatusCode, string(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
