package model

// Pool identifies a tracked ICPSwap trading pool.
type Pool struct {
	ID    string `json:"pool_id" mapstructure:"pool_id"`
	Title string `json:"title" mapstructure:"title"`
}
