// Package wstore persists wallet state as Boost archives inside a bbolt
// key-value file: unsigned transaction sets under one bucket, opaque wallet
// cache blobs under another. It is the storage home for the archive formats;
// all framing is done by the boost package.
package wstore

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"xmrserial.dev/serial/boost"
	"xmrserial.dev/serial/schema"
	"xmrserial.dev/serial/xio"
	"xmrserial.dev/serial/xmr"
)

var (
	bucketUnsignedSets = []byte("unsigned_sets_by_id")
	bucketWalletCaches = []byte("wallet_caches_by_id")
)

type Store struct {
	db  *bolt.DB
	log *zap.Logger
}

// Open opens or creates the store file. A nil logger disables logging.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketUnsignedSets, bucketWalletCaches} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("wallet store open", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	s.log.Info("wallet store closing")
	return s.db.Close()
}

// PutUnsignedTxSet Boost-encodes the set under the given versions (nil for
// current) and stores it by id.
func (s *Store) PutUnsignedTxSet(id string, set *xmr.UnsignedTxSet, versions *schema.VersionSetting) error {
	mem := xio.NewMemory(nil)
	ar := boost.NewWriter(mem, versions)
	if err := ar.Root(); err != nil {
		return err
	}
	if err := ar.Message(set, xmr.UnsignedTxSetSpec); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnsignedSets).Put([]byte(id), mem.Bytes())
	})
	if err != nil {
		return fmt.Errorf("put unsigned set %q: %w", id, err)
	}
	s.log.Info("unsigned set stored",
		zap.String("id", id),
		zap.Int("txes", len(set.Txes)),
		zap.Int("transfers", len(set.Transfers)),
		zap.Int("bytes", len(mem.Bytes())))
	return nil
}

// GetUnsignedTxSet loads and decodes the set stored under id, or returns
// (nil, nil) when absent.
func (s *Store) GetUnsignedTxSet(id string) (*xmr.UnsignedTxSet, error) {
	var blob []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketUnsignedSets).Get([]byte(id)); v != nil {
			blob = append(blob, v...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	ar := boost.NewReader(xio.NewMemory(blob))
	if err := ar.Root(); err != nil {
		return nil, err
	}
	set := &xmr.UnsignedTxSet{}
	if err := ar.Message(set, xmr.UnsignedTxSetSpec); err != nil {
		return nil, err
	}
	return set, nil
}

// PutWalletCache stores an already-encoded wallet cache blob.
func (s *Store) PutWalletCache(id string, blob []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWalletCaches).Put([]byte(id), blob)
	})
	if err != nil {
		return fmt.Errorf("put wallet cache %q: %w", id, err)
	}
	s.log.Info("wallet cache stored", zap.String("id", id), zap.Int("bytes", len(blob)))
	return nil
}

// GetWalletCache returns the stored blob, or nil when absent.
func (s *Store) GetWalletCache(id string) ([]byte, error) {
	var blob []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketWalletCaches).Get([]byte(id)); v != nil {
			blob = append(blob, v...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return blob, nil
}
