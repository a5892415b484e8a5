package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 300

// PGXTracer plugs into pgx.ConnConfig.Tracer and opens a client span per
// query, named after the SQL verb.
type PGXTracer struct{}

var _ pgx.QueryTracer = PGXTracer{}

// TraceQueryStart implements pgx.QueryTracer.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	verb := statementVerb(data.SQL)
	name := "pgx.query"
	attrs := []attribute.KeyValue{
		semconv.DBSystemKey.String("postgresql"),
		attribute.String("db.statement", shortenStatement(data.SQL)),
		attribute.Int("db.args", len(data.Args)),
	}
	if verb != "" {
		name = "pgx " + verb
		attrs = append(attrs, attribute.String("db.operation", verb))
	}
	ctx, _ = otel.Tracer("db.pgx").Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx
}

// TraceQueryEnd implements pgx.QueryTracer.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}
	span.End()
}

// statementVerb returns the leading SQL keyword, looking through a WITH
// clause to the statement it feeds.
func statementVerb(sql string) string {
	fields := strings.Fields(strings.ToUpper(sql))
	if len(fields) == 0 {
		return ""
	}
	if fields[0] != "WITH" {
		return fields[0]
	}
	for _, f := range fields[1:] {
		switch f {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return f
		}
	}
	return "WITH"
}

func shortenStatement(sql string) string {
	sql = strings.TrimSpace(sql)
	if len(sql) <= maxStatementLen {
		return sql
	}
	return sql[:maxStatementLen] + "..."
}
