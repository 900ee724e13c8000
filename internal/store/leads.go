package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"
)

const (
	leadsListKey = "leads"
	leadsSeenKey = "leads:seen:"
)

// ErrInvalidEmail is returned for addresses that do not parse
var ErrInvalidEmail = errors.New("invalid email address")

// Lead is a captured contact address
type Lead struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadsExport is the document written by Export
type LeadsExport struct {
	Leads      []Lead    `json:"leads"`
	ExportDate time.Time `json:"export_date"`
}

// Leads is the deduplicated contact registry
type Leads struct {
	store Store
	now   func() time.Time
}

// NewLeads creates a lead registry on top of s
func NewLeads(s Store) *Leads {
	return &Leads{store: s, now: time.Now}
}

// Save validates and records email. Returns false when the address was already known.
func (l *Leads) Save(ctx context.Context, email string) (bool, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return false, err
	}

	seen := leadsSeenKey + normalized
	if _, found, err := l.store.Get(ctx, seen); err != nil {
		return false, err
	} else if found {
		return false, nil
	}

	lead := Lead{Email: normalized, CreatedAt: l.now().UTC()}
	data, err := json.Marshal(lead)
	if err != nil {
		return false, fmt.Errorf("marshal lead: %w", err)
	}

	if err := l.store.Append(ctx, leadsListKey, data); err != nil {
		return false, err
	}
	if err := l.store.Set(ctx, seen, []byte("1"), 0); err != nil {
		return false, err
	}

	return true, nil
}

// All returns every saved lead in insertion order
func (l *Leads) All(ctx context.Context) ([]Lead, error) {
	items, err := l.store.List(ctx, leadsListKey)
	if err != nil {
		return nil, err
	}

	leads := make([]Lead, 0, len(items))
	for _, item := range items {
		var lead Lead
		if err := json.Unmarshal(item, &lead); err != nil {
			return nil, fmt.Errorf("decode lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// Export writes all leads as an indented JSON document
func (l *Leads) Export(ctx context.Context, w io.Writer) error {
	leads, err := l.All(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(LeadsExport{Leads: leads, ExportDate: l.now().UTC()})
}

// NormalizeEmail parses a bare address and lowercases it
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return strings.ToLower(addr.Address), nil
}
