// Package tasks assembles catalog pages, dashboards, and listing exports with real-time progress reporting.
//
// # Core Operations
//
// The [CatalogEngine] interface defines four operations:
//
//  1. [CatalogEngine.Catalog] : Filtered, paginated listing
//     - Fetches every chalet from the backend
//     - Applies a [Filter] on the client (query, location, bedrooms, guests, price)
//     - Returns the requested page with [PageInfo] bounds
//
//  2. [CatalogEngine.Dashboard] : Admin or user dashboard
//     - Admin: profile, statistics, and listing totals
//     - User: profile and favorites, with missing details prefetched
//     - Failed endpoints are collected in [DashboardResult.Errors]
//
//  3. [CatalogEngine.Prefetch] : Concurrent chalet detail fetches
//     - Rate-limited worker pool over GetChalet
//     - Results keep request order
//
//  4. [CatalogEngine.Export] : Listing export
//     - json, csv, txt as one file; markdown as an index plus one directory per chalet
//     - Writes export_manifest.json summarizing the run
//
// # Pagination
//
// [Paginate] clamps the requested page and returns slice bounds; [PageNumbers] lays out a compact pager.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [Engine] implements [CatalogEngine] with a dependency on [services.Backend].
package tasks
