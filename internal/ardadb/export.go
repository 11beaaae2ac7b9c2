package ardadb

import (
	"context"
	"strings"
)

// InsertToS3 asks the server to execute a query and write the result
// directly to an S3 object as CSV with a header row. The result never
// streams through the client process. A nonexistent bucket surfaces as a
// server error.
//
// The s3 table function does not accept bound parameters for its own
// arguments, so the URI and credentials are embedded with single-quote
// escaping. The wrapped query keeps its placeholders and bound values.
func (e *Engine) InsertToS3(ctx context.Context, query string, args []any, uri, accessKeyID, secretAccessKey string) error {
	var b strings.Builder
	b.WriteString("INSERT INTO FUNCTION s3(")
	b.WriteString(quoteString(uri))
	b.WriteString(", ")
	b.WriteString(quoteString(accessKeyID))
	b.WriteString(", ")
	b.WriteString(quoteString(secretAccessKey))
	b.WriteString(", CSVWithNames) ")
	b.WriteString(query)
	return e.Exec(ctx, b.String(), args)
}

// quoteString renders a single-quoted SQL string literal, escaping
// backslashes and quotes.
func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}
