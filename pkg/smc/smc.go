//go:build darwin

// Package smc reads battery state from the Apple System Management
// Controller. Only reads are performed; island never changes charging
// behaviour.
package smc

import (
	"github.com/charlie0129/gosmc"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Connection is the subset of gosmc.Connection used here.
type Connection interface {
	Open() error
	Close() error
	Read(key string) (gosmc.SMCVal, error)
}

// AppleSMC reads keys over a gosmc connection.
type AppleSMC struct {
	conn Connection
}

// New returns an AppleSMC backed by the real controller.
func New() *AppleSMC {
	return &AppleSMC{
		conn: gosmc.New(),
	}
}

// NewMock returns an AppleSMC backed by an in-memory connection holding
// values.
func NewMock(values map[string][]byte) *AppleSMC {
	conn := gosmc.NewMockConnection()

	for key, value := range values {
		if err := conn.Write(key, value); err != nil {
			panic(err)
		}
	}

	return &AppleSMC{
		conn: conn,
	}
}

// Open opens the connection.
func (c *AppleSMC) Open() error {
	return c.conn.Open()
}

// Close closes the connection.
func (c *AppleSMC) Close() error {
	return c.conn.Close()
}

// Read reads the raw value of key.
func (c *AppleSMC) Read(key string) (gosmc.SMCVal, error) {
	v, err := c.conn.Read(key)
	if err != nil {
		return v, pkgerrors.Wrapf(err, "failed to read SMC key %s", key)
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": v.Bytes,
	}).Trace("read SMC key")

	return v, nil
}
