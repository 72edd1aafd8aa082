// Package tasks reconciles liked songs and playlists across music platforms with real-time progress reporting.
//
// # Core Operations
//
// [Engine] provides three operations:
//
//  1. [Engine.AnalyzeLiked] : Liked-song reconciliation
//     - Fetches liked songs from every configured platform concurrently
//     - Resolves each record to a canonical [identity.Key] (ISRC first, then normalized title/artist)
//     - Proposes an add_liked_song action for every song missing on a platform
//
//  2. [Engine.AnalyzePlaylists] : Playlist reconciliation
//     - Groups playlists across platforms by normalized name ([Unify])
//     - Proposes create_playlist for platforms lacking a group
//     - Fetches tracks of existing playlists and proposes add_track_to_playlist for missing songs
//
//  3. [Engine.Apply] : Executes proposed actions
//     - Locates each song on the target platform with a [SongFinder] (ISRC search, then text search)
//     - Writes likes, playlists and playlist entries through the platform adapters
//
// The [SyncEngine] interface wraps them for front ends that review proposals before applying:
// [Engine.Analyze] records a dry run and [Engine.ApplySelected] updates that run with the outcome.
// [Engine.Run] chains both for the CLI.
//
// Analysis never writes to a platform; only Apply does.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # ID Caching
//
// The optional [IDCache] interface remembers which native ID a song resolved to on each platform,
// so repeated applies skip the search calls (repositories.TrackMappingRepository).
//
// # Implementation
//
// [Engine] implements [SyncEngine] with dependencies on:
//   - [services.Service] : Spotify, YouTube and Deezer API clients
//   - [identity.Resolver] : Canonical track identities
//   - [IDCache] : Optional persistence layer for found IDs
//   - [RunRecorder] : Optional sync history (repositories.SyncRunRepository)
package tasks
