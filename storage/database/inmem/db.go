package inmemdb

import (
	"sync"

	"github.com/crackinspine82/RattoMatt-sub001/core/syllabus"
)

type (
	DB struct {
		syllabus *nodeTable
	}

	nodeTable struct {
		sync.RWMutex
		table map[string]*syllabus.Node // {id: node}
		order []string                  // insertion order
	}
)

func Open() (*DB, error) {
	db := &DB{
		syllabus: &nodeTable{table: make(map[string]*syllabus.Node)},
	}
	return db, nil
}
