// Package repositories implements persistence for sync history, search results and OAuth tokens.
//
// Key Implementations:
//   - [SyncRunRepository] : analysis and apply history, used by the engine as its run recorder
//   - [TrackMappingRepository] : platform-native ids resolved by the song finder
//   - [TrackCache] : adapts [TrackMappingRepository] to the song finder's id cache
//   - [TokenRepository] : OAuth tokens in sqlite
//   - [RedisTokenStore] : OAuth tokens in redis, for hosts sharing one login
//
// Both token stores implement [TokenStore]. [PersistRefreshed] writes tokens refreshed by a
// platform adapter back to whichever store is configured.
package repositories
