package stock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
)

func TestLocker_SerialisesSameKey(t *testing.T) {
	l := NewLocker()
	key := entity.StockKey{WarehouseID: id.New(), ProductID: id.New()}

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock([]entity.StockKey{key})
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.size(), "cells are released when unused")
}

func TestLocker_OppositeOrderDoesNotDeadlock(t *testing.T) {
	l := NewLocker()
	a := entity.StockKey{WarehouseID: id.New(), ProductID: id.New()}
	b := entity.StockKey{WarehouseID: id.New(), ProductID: id.New()}

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				l.Lock([]entity.StockKey{a, b})()
			}()
			go func() {
				defer wg.Done()
				l.Lock([]entity.StockKey{b, a, b})()
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lock ordering deadlocked")
	}
}
