package rendercache

// Params tunes the cache's behavior. Concrete defaults here (tile
// resolution, blur/cost thresholds) are not specified numerically by
// spec.md §4.5, which names the knobs (BR, max_scale,
// min_prop_time_per_cache, cache_size) without pinning values — recorded
// as an Open Question decision in DESIGN.md.
type Params struct {
	// TileResolution is BR: the pixel width and height of every backing
	// surface the cache allocates.
	TileResolution int

	// MaxScale bounds how many screen pixels one backing-tile pixel may
	// cover before a node is considered too blurry to cache at its
	// current level and must recurse into children instead.
	MaxScale float64

	// MinPropTimePerCache is the estimated-render-cost threshold above
	// which a node's intersecting leaves are worth caching onto a backing
	// surface; below it, rendering directly to the screen every frame is
	// cheaper than the bookkeeping of caching.
	MinPropTimePerCache float64

	// CacheSizeBytes bounds the backing-surface pool: the pool holds
	// ceil(CacheSizeBytes / (4*TileResolution*TileResolution)) records,
	// per spec.md §4.5 (4 bytes/pixel, RGBA8).
	CacheSizeBytes int
}

// DefaultParams returns reasonable defaults: 256x256 tiles, a 4x
// screen-pixel-per-tile-pixel blur threshold, a modest caching-worth
// threshold, and a 64 MiB backing-surface budget.
func DefaultParams() Params {
	return Params{
		TileResolution:      256,
		MaxScale:            4.0,
		MinPropTimePerCache: 0.5,
		CacheSizeBytes:      64 << 20,
	}
}
