package sources

import (
	"fmt"
	"sync"
)

// Cache holds loaded source configurations behind a read lock so the
// scheduler and API handlers can share them.
type Cache struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

func NewCache(configs map[string]*Config) *Cache {
	if configs == nil {
		configs = make(map[string]*Config)
	}
	return &Cache{configs: configs}
}

func (c *Cache) GetConfig(name string) (*Config, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, ok := c.configs[name]
	if !ok {
		return nil, fmt.Errorf("source %q not configured", name)
	}
	return config, nil
}

func (c *Cache) GetConfigs() []*Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	configs := make([]*Config, 0, len(c.configs))
	for _, config := range c.configs {
		configs = append(configs, config)
	}
	return configs
}

func (c *Cache) GetEnabledConfigs() []*Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	configs := make([]*Config, 0, len(c.configs))
	for _, config := range c.configs {
		if config.Settings.Enabled {
			configs = append(configs, config)
		}
	}
	return configs
}
