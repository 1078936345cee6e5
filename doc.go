// Package lazyscan serves relations as lazy, predicate-pushdown scans for a
// dataframe query engine.
//
// The engine describes a scan with a projection, a Polars predicate in its
// JSON form, a row limit and a batch size. lazyscan translates the predicate
// into its own expression tree (package expr, via package polars), negotiates
// the output schema, and streams Arrow record batches from a relation. Every
// stream ends with one zero-row batch carrying the schema.
//
// # Packages
//
//   - dtype: logical data types and their Arrow mapping
//   - expr: the closed expression tree pushed down to relations
//   - polars: Polars expression JSON parser and translator
//   - scan: the lazy scan bridge (Source, Stream)
//   - relation: in-memory and file-backed relations; relation/duckdb for DuckDB tables
//   - codec: Arrow IPC file codecs selected by extension
//   - catalog, flight: named relations served over Arrow Flight
//
// # Quick Start
//
// Serve an Arrow IPC file over Flight:
//
//	rel, err := relation.Open("events.arrows", memory.DefaultAllocator)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cat, err := lazyscan.NewCatalogBuilder().
//	    Relation(lazyscan.RelationDef{Name: "events", Relation: rel}).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	grpcServer := grpc.NewServer()
//	if err := lazyscan.NewServer(grpcServer, lazyscan.ServerConfig{Catalog: cat}); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
//
// In-process, a scan.Source gives the registration hook directly:
//
//	src, _ := scan.NewSource(rel)
//	schema, open := src.Register()
//	stream, err := open(ctx, scan.Options{WithColumns: []string{"a"}, Predicate: node})
package lazyscan
