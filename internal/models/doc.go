// Package models defines domain entities and persistence interfaces for tunesync.
//
// The package contains two categories of types:
//
// 1. Platform records: typed, per-platform structs produced by service adapters
//   - [SpotifyTrack] : Spotify track with ISRC from external_ids
//   - [YouTubeVideo] : YouTube video with title and channel metadata only
//   - [DeezerTrack] : Deezer track with ISRC
//   - [Playlist] : playlist metadata from any platform
//
// All track records implement the sealed [RawTrack] interface so identity resolution
// works on a closed set of shapes instead of loosely typed payloads.
//
// 2. Persistent entities: database-backed models
//   - [SyncRun] : a recorded analysis or apply run
//   - [TrackMapping] : a resolved platform-native id cached for a search hint
//
// Persistent entities implement the [Model] interface and are stored through [Repository] implementations.
package models
