// Package events publica los cambios del ledger en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/alejandrodnm/polysim/internal/domain"
)

const (
	DefaultTopic = "polysim.ledger"

	TypeBetPlaced  = "bet_placed"
	TypeBetSettled = "bet_settled"
)

// Message es el payload JSON de cada evento.
type Message struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Profile    string    `json:"profile"`
	OccurredAt time.Time `json:"occurred_at"`
	Bet        betView   `json:"bet"`
}

type betView struct {
	ID              int    `json:"id"`
	Market          string `json:"market"`
	MarketID        string `json:"market_id,omitempty"`
	Outcome         string `json:"outcome"`
	Amount          string `json:"amount"`
	Price           string `json:"price"`
	PotentialPayout string `json:"potential_payout"`
	Status          string `json:"status"`
}

// messageWriter es la parte de *kafka.Writer que usamos; permite fakes en tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implementa ports.LedgerEvents sobre Kafka.
type Publisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewPublisher crea un writer contra brokers. Sin brokers devuelve error:
// el caller debe usar Nop en ese caso.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	clean := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			clean = append(clean, b)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("events.NewPublisher: no brokers configured")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(clean...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, topic), nil
}

func newPublisher(w messageWriter, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic, now: time.Now}
}

func (p *Publisher) BetPlaced(ctx context.Context, profile string, bet domain.Bet) error {
	return p.publish(ctx, TypeBetPlaced, profile, bet)
}

func (p *Publisher) BetSettled(ctx context.Context, profile string, bet domain.Bet) error {
	return p.publish(ctx, TypeBetSettled, profile, bet)
}

func (p *Publisher) publish(ctx context.Context, typ, profile string, bet domain.Bet) error {
	msg, err := buildMessage(typ, profile, bet, p.now().UTC())
	if err != nil {
		return fmt.Errorf("events.publish %s: %w", typ, err)
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events.publish %s: write: %w", typ, err)
	}
	return nil
}

// buildMessage arma el kafka.Message; la key es el perfil para mantener orden por perfil.
func buildMessage(typ, profile string, bet domain.Bet, at time.Time) (kafka.Message, error) {
	m := Message{
		ID:         uuid.NewString(),
		Type:       typ,
		Profile:    profile,
		OccurredAt: at,
		Bet: betView{
			ID:              bet.ID,
			Market:          bet.Market,
			MarketID:        bet.MarketID,
			Outcome:         bet.Outcome,
			Amount:          bet.Amount.String(),
			Price:           bet.Price.String(),
			PotentialPayout: bet.PotentialPayout.String(),
			Status:          string(bet.Status),
		},
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(profile),
		Value: payload,
		Time:  at,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(typ)},
		},
	}, nil
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Nop descarta todos los eventos.
type Nop struct{}

func (Nop) BetPlaced(context.Context, string, domain.Bet) error  { return nil }
func (Nop) BetSettled(context.Context, string, domain.Bet) error { return nil }
func (Nop) Close() error                                          { return nil }
