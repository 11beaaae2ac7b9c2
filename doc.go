// Package algoseek provides a client library for browsing and querying
// algoseek tabular datasets hosted on two backends: ArdaDB, an analytical
// SQL database, and S3 object storage.
//
// Both backends are exposed through the same discovery hierarchy
// (DataSource -> DataGroup -> Dataset) and a fluent statement builder that
// translates chained method calls into parameterized SQL. Results can be
// materialized all at once, streamed in bounded-size chunks, or converted
// into Arrow records for columnar processing.
//
// # Basic Usage
//
// Data sources are created through a ResourceManager, which resolves
// credentials from explicit settings, environment variables, or the
// ~/.algoseek/config.toml file:
//
//	manager, err := algoseek.NewResourceManager(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	source, err := manager.CreateDataSource(ctx, algoseek.DataSourceArdaDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer source.Close()
//
//	group, err := source.FetchDataGroup(ctx, "USEquityMarketData")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dataset, err := group.FetchDataset(ctx, "TradeOnly")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Building Queries
//
// Datasets expose their columns through an explicit handle. Every builder
// call returns a new statement, so partially built statements can be shared
// safely:
//
//	ticker, _ := dataset.Column("Ticker")
//	price, _ := dataset.Column("Price")
//
//	stmt := dataset.Select(ticker, price).
//	    Where(ticker.Eq("ABC")).
//	    OrderBy(price.Desc()).
//	    Limit(10)
//
//	result, err := dataset.Fetch(ctx, stmt)
//
// Statements never touch the network; only Compile, Fetch, FetchIter and
// their frame variants do. Invalid builder calls (negative limits,
// selecting and excluding columns at the same time) are recorded at the
// offending call and reported before any query is issued.
//
// # Streaming
//
// FetchIter delivers results as chunks of at most the requested number of
// rows, re-chunking whatever block sizes the backend driver produces:
//
//	it, err := dataset.FetchIter(ctx, stmt, 1000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer it.Close()
//	for it.Next() {
//	    chunk := it.Chunk()
//	    // at most 1000 rows per chunk
//	}
//	if err := it.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # S3 Datasets
//
// Object-storage datasets do not support SQL queries; they are downloaded
// instead, with a configurable quota enforced before any transfer starts.
// ArdaDB query results can also be exported server-side to S3 with
// Dataset.StoreToS3, without streaming data through the client process.
package algoseek
