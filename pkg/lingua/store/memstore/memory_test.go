package memstore

import (
	"testing"

	"github.com/cognicore/lingua/pkg/lingua/store"
	"github.com/cognicore/lingua/pkg/lingua/store/storetest"
)

func TestMemStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() })
}
