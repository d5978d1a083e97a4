package app

import "github.com/promptdeck/promptdeck/internal/database"

// DatabaseConfig converts the loaded settings into the database package form.
func (c DatabaseConfig) DatabaseConfig() database.Config {
	return database.Config{
		Driver:   c.Driver,
		Path:     c.Path,
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		Name:     c.Name,
		User:     c.Username,
		Password: c.Password,
	}
}
