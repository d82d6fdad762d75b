// Package idgen generates the externally visible numeric user identities.
// Snowflake style IDs are time sortable and stable across database rebuilds,
// unlike auto increment row IDs.
package idgen

import (
	"github.com/sony/sonyflake"
)

type Generator interface {
	NextID() (uint64, error)
}

type Sonyflake struct {
	sf *sonyflake.Sonyflake
}

// New creates a generator for the given machine ID. Machine IDs must be
// unique per running instance writing to the same user table.
func New(machineID uint16) (*Sonyflake, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		MachineID: func() (uint16, error) { return machineID, nil },
	})
	if err != nil {
		return nil, err
	}
	return &Sonyflake{sf: sf}, nil
}

func (g *Sonyflake) NextID() (uint64, error) {
	return g.sf.NextID()
}
