package keybuilder

import "fmt"

const (
	Redis   string = "redis"
	Watcher string = "slot-watcher"
	Status  string = "status"
)

// RedisStatusKeyBuild returns the key holding the latest cycle report.
func RedisStatusKeyBuild() string {
	return fmt.Sprintf("%s:%s:%s", Redis, Watcher, Status)
}
