package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// tagAliases mapea categorías habituales a tag IDs conocidos de Gamma.
// nba se fija para no caer en WNBA por match parcial.
var tagAliases = map[string][]string{
	"politics":         {"375"},
	"politic":          {"375"},
	"us election":      {"375"},
	"u.s. election":    {"375"},
	"nba":              {"745"},
	"nfl":              {"450"},
	"football":         {"450"},
	"soccer":           {"100350", "306", "1234"},
	"epl":              {"306"},
	"ucl":              {"1234"},
	"champions league": {"1234"},
	"crypto":           {"163"},
	"bitcoin":          {"163"},
}

// El tag "1" es el genérico de sports y no filtra nada.
const genericSportsTag = "1"

// ResolveTag traduce una categoría a uno o más tag IDs.
// Orden: alias, ID numérico, /tags (exacto y luego parcial), /sports (exacto y luego parcial).
// Devuelve nil sin error si no encuentra nada.
func (c *Client) ResolveTag(ctx context.Context, category string) ([]string, error) {
	term := strings.ToLower(strings.TrimSpace(category))
	if term == "" {
		return nil, nil
	}
	if ids, ok := tagAliases[term]; ok {
		return append([]string(nil), ids...), nil
	}
	if isDigits(term) {
		return []string{term}, nil
	}

	var tags []gammaTag
	if err := c.get(ctx, c.gammaBase+"/tags", &tags); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("polymarket.ResolveTag: %w", ctx.Err())
		}
		slog.Warn("error fetching tags", "err", err)
	} else if id := matchTag(tags, term); id != "" {
		return []string{id}, nil
	}

	var sports []gammaSport
	if err := c.get(ctx, c.gammaBase+"/sports", &sports); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("polymarket.ResolveTag: %w", ctx.Err())
		}
		slog.Warn("error fetching sports", "err", err)
	} else if id := matchSport(sports, term); id != "" {
		return []string{id}, nil
	}

	return nil, nil
}

func matchTag(tags []gammaTag, term string) string {
	for _, t := range tags {
		if strings.ToLower(t.Label) == term || strings.ToLower(t.Slug) == term {
			return string(t.ID)
		}
	}
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t.Label), term) || strings.Contains(strings.ToLower(t.Slug), term) {
			return string(t.ID)
		}
	}
	return ""
}

func matchSport(sports []gammaSport, term string) string {
	for _, exact := range []bool{true, false} {
		for _, s := range sports {
			slug := strings.ToLower(s.Sport)
			if exact && slug != term || !exact && !strings.Contains(slug, term) {
				continue
			}
			if id := firstSpecificTag(s.Tags); id != "" {
				return id
			}
		}
	}
	return ""
}

func firstSpecificTag(csv string) string {
	for _, id := range strings.Split(csv, ",") {
		id = strings.TrimSpace(id)
		if id != "" && id != genericSportsTag {
			return id
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
