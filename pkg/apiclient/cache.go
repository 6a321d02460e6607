package apiclient

// CacheStats is a point-in-time view of the server's read cache.
type CacheStats struct {
	Driver     string `json:"driver"`
	Keys       int64  `json:"keys"`
	UsedMemory string `json:"used_memory"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
}

// CacheStats returns statistics for the server's read cache.
func (c *Client) CacheStats() (*CacheStats, error) {
	return getResource[CacheStats](c, "/api/v1/admin/cache/stats")
}
