// Package viper provides a package-specific instance of Viper so that
// testpiper never touches Viper's global instance, which can conflict
// with other importers.
package viper

import (
	"sync"

	spfviper "github.com/spf13/viper"
)

var (
	instance *spfviper.Viper
	mu       = sync.Mutex{}
)

// Instance returns the shared Viper instance, lazily creating it on
// first use.
func Instance() *spfviper.Viper {
	if instance != nil {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = spfviper.New()
	}
	return instance
}
