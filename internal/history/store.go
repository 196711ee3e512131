// Package history records resolved quotes so they can be compared over time.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"quotescraper/internal/scrape"
	configlibsql "quotescraper/lib/configutil/libsql"
	"quotescraper/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var Schema string

var tracer = telemetry.Tracer("quotescraper.internal.history")

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens the configured database and makes sure the schema exists.
func Open(ctx context.Context, config configlibsql.Struct) (Store, error) {
	database, err := config.OpenDB()
	if err != nil {
		return Store{}, err
	}
	_, err = database.ExecContext(ctx, Schema)
	if err != nil {
		database.Close()
		return Store{}, fmt.Errorf("apply history schema: %w", err)
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Record stores every attribute of one resolution, failures are stored with
// their error text. Recording the same poll twice replaces the first record.
func (s Store) Record(ctx context.Context, pollId string, stock scrape.Stock, at time.Time, m scrape.ResolutionMap) error {
	ctx, span := tracer.Start(ctx, "Store:Record", trace.WithAttributes(
		attribute.String("poll_id", pollId),
		attribute.String("stock", stock.String()),
	))
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for attr, result := range m {
		var value, errText string
		if result.IsOk() {
			value = result.Value
		} else {
			errText = result.Err.Error()
		}
		_, err = tx.ExecContext(
			ctx,
			`insert or replace into quote_snapshot (poll_id, ticker, exchange, attr, value, error, time)
			values (?, ?, ?, ?, ?, ?, ?)`,
			pollId, stock.Ticker, stock.Exchange, attr.String(), value, errText, at.Unix(),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert snapshot")
			return err
		}
	}
	return tx.Commit()
}

// Snapshot is every attribute recorded for a stock in one poll.
type Snapshot struct {
	PollId string
	Stock  scrape.Stock
	Time   time.Time
	// Values holds attributes that resolved, Errors holds the error text of
	// those that did not.
	Values map[scrape.AttrId]string
	Errors map[scrape.AttrId]string
}

// Recent returns the last `limit` snapshots of a ticker, newest first.
func (s Store) Recent(ctx context.Context, ticker string, limit int) ([]Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Store:Recent", trace.WithAttributes(
		attribute.String("ticker", ticker),
		attribute.Int("limit", limit),
	))
	defer span.End()

	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(
		ctx,
		`select poll_id, exchange, attr, value, error, time from quote_snapshot
		where ticker = ? and poll_id in (
			select poll_id from quote_snapshot
			where ticker = ?
			group by poll_id
			order by max(time) desc, poll_id desc
			limit ?
		)`,
		ticker, ticker, limit,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query snapshots")
		return nil, err
	}
	defer rows.Close()

	byPoll := map[string]*Snapshot{}
	for rows.Next() {
		var pollId, exchange, attrName, value, errText string
		var unix int64
		err := rows.Scan(&pollId, &exchange, &attrName, &value, &errText, &unix)
		if err != nil {
			return nil, err
		}
		attr, err := scrape.ParseAttrId(attrName)
		if err != nil {
			slog.WarnContext(ctx, "skipping unknown attribute in history", "attr", attrName, "err", err)
			continue
		}

		snapshot, ok := byPoll[pollId]
		if !ok {
			snapshot = &Snapshot{
				PollId: pollId,
				Stock:  scrape.Stock{Ticker: ticker, Exchange: exchange},
				Time:   time.Unix(unix, 0),
				Values: map[scrape.AttrId]string{},
				Errors: map[scrape.AttrId]string{},
			}
			byPoll[pollId] = snapshot
		}
		if errText != "" {
			snapshot.Errors[attr] = errText
		} else {
			snapshot.Values[attr] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Snapshot, 0, len(byPoll))
	for _, snapshot := range byPoll {
		out = append(out, *snapshot)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time.Equal(out[j].Time) {
			return out[i].PollId > out[j].PollId
		}
		return out[i].Time.After(out[j].Time)
	})
	return out, nil
}
