package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// umsatzListMethod is the Hibiscus XML-RPC procedure returning bookings.
const umsatzListMethod = "hibiscus.xmlrpc.umsatz.list"

// RPCConfig holds the parameters for talking to a running Hibiscus server.
type RPCConfig struct {
	// URL is the XML-RPC endpoint, e.g. "https://localhost:8080/xmlrpc/".
	URL string

	// User and Password authenticate against the server (HTTP basic auth).
	User     string
	Password string
}

// RPCSource reads bookings from a live Hibiscus server over XML-RPC.
type RPCSource struct {
	client *xmlrpc.Client
}

var _ Source = &RPCSource{}

// OpenRPC creates a client for the configured endpoint. A connection failure
// surfaces on the first call; there is no retry.
func OpenRPC(cfg RPCConfig) (*RPCSource, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rpc url: %w", err)
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	client, err := xmlrpc.NewClient(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("rpc client: %w", err)
	}

	return &RPCSource{client: client}, nil
}

// Close releases the underlying connection.
func (s *RPCSource) Close() error {
	return s.client.Close()
}

// Ping issues a minimal list call to verify connectivity and credentials.
func (s *RPCSource) Ping(ctx context.Context) error {
	today := time.Now().Format("2006-01-02")
	params := listParams(Filter{MinDate: today}, 0)

	var raw any
	if err := s.call(ctx, params, &raw); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Fetch queries the server once per filtered account and merges the results,
// ordered ascending by record id. The date and id lower bounds and the row
// cap are enforced after the merge; the server-side filter only narrows the
// date range.
func (s *RPCSource) Fetch(ctx context.Context, f Filter) ([]Row, error) {
	accountIDs := f.AccountIDs
	if len(accountIDs) == 0 {
		// No account filter; a single unscoped call returns everything.
		accountIDs = []int64{0}
	}

	var out []Row
	for _, accountID := range accountIDs {
		params := listParams(f, accountID)
		log.Debug().Interface("params", params).Msg("calling umsatz.list")

		var raw any
		if err := s.call(ctx, params, &raw); err != nil {
			return nil, fmt.Errorf("umsatz.list: %w", err)
		}

		rows, err := rowsFromResponse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}

	slices.SortStableFunc(out, func(a, b Row) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	// The server-side date range is inclusive; the id bound does not exist
	// there at all. Both are "strictly greater than" here, so re-filter.
	if f.MinID > 0 || f.MinDate != "" {
		filtered := out[:0]
		for _, r := range out {
			if f.MinID > 0 && r.ID <= f.MinID {
				continue
			}
			if f.MinDate != "" && r.Date <= f.MinDate {
				continue
			}
			filtered = append(filtered, r)
		}
		out = filtered
	}
	if f.MaxRows > 0 && len(out) > f.MaxRows {
		out = out[:f.MaxRows]
	}

	return out, nil
}

// call runs one XML-RPC request, honoring context cancellation. The blocking
// call itself cannot be interrupted mid-flight; the check covers the common
// case of an already-canceled run.
func (s *RPCSource) call(ctx context.Context, params map[string]any, reply *any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.client.Call(umsatzListMethod, params, reply)
}

// listParams builds the umsatz.list filter struct. Unset options are stripped
// entirely rather than sent as nulls; a date range is always included because
// the server treats an open range as "everything since forever".
func listParams(f Filter, accountID int64) map[string]any {
	params := map[string]any{
		"datum:min": f.MinDate,
		"datum:max": time.Now().Format("2006-01-02"),
	}
	if accountID > 0 {
		params["konto_id"] = strconv.FormatInt(accountID, 10)
	}
	if params["datum:min"] == "" {
		params["datum:min"] = "1970-01-01"
	}
	return stripEmpty(params)
}

// stripEmpty removes nil and empty-string values from a filter struct.
func stripEmpty(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// rowsFromResponse maps the server's list-of-structs response onto the fixed
// Row schema. The server returns every field as a string, amounts in German
// notation with a comma decimal separator.
func rowsFromResponse(raw any) ([]Row, error) {
	items, ok := raw.([]any)
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: unexpected response type %T", ErrSchemaMismatch, raw)
	}

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected row type %T", ErrSchemaMismatch, item)
		}

		id, err := parseID(fields["id"])
		if err != nil {
			return nil, fmt.Errorf("umsatz id: %w", err)
		}
		accountID, err := parseID(fields["konto_id"])
		if err != nil {
			return nil, fmt.Errorf("umsatz %d: konto_id: %w", id, err)
		}
		amount, err := ParseDecimal(fields["betrag"])
		if err != nil {
			return nil, fmt.Errorf("umsatz %d: betrag: %w", id, err)
		}
		balance, err := ParseDecimal(fields["saldo"])
		if err != nil {
			return nil, fmt.Errorf("umsatz %d: saldo: %w", id, err)
		}

		rows = append(rows, Row{
			ID:               id,
			AccountID:        accountID,
			Amount:           amount,
			Balance:          balance,
			Purpose:          asString(fields["zweck"]),
			Counterparty:     asString(fields["empfaenger_konto"]),
			CounterpartyName: asString(fields["empfaenger_name"]),
			Date:             asString(fields["datum"]),
		})
	}

	return rows, nil
}
