package blobs

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/dgraph-io/badger"
)

var badgerPrefix = []byte("blob/")

func badgerKey(signedID string) []byte {
	return append(append([]byte{}, badgerPrefix...), signedID...)
}

// BadgerStore persists blobs as JSON values in a badger database.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerStore opens (or creates) a badger database in dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, storeFailure("open badger database "+dir, err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStore uses an already open database. Close leaves it open.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Info implements Store.
func (s *BadgerStore) Info(ctx context.Context, signedID string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	var info Info
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(signedID))
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(value, &info)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return Info{}, notFound(signedID)
	}
	if err != nil {
		return Info{}, storeFailure("read blob "+signedID, err)
	}
	return info, nil
}

// Put implements Store.
func (s *BadgerStore) Put(ctx context.Context, info Info) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	if info.SignedID == "" {
		info.SignedID = NewSignedID()
	}
	data, err := json.Marshal(info)
	if err != nil {
		return Info{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(info.SignedID), data)
	})
	if err != nil {
		return Info{}, storeFailure("write blob "+info.SignedID, err)
	}
	return info, nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
