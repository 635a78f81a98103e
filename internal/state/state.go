package state

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexjbarnes/camera-sync/internal/models"
	bolt "go.etcd.io/bbolt"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.camera-sync/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second
)

var (
	syncRecordsBucket    = []byte("sync_records")
	syncTimestampsBucket = []byte("sync_timestamps")
	sdTransfersBucket    = []byte("sd_transfers")
	backupStateBucket    = []byte("backup_state")
)

// syncRecordKey is the bbolt key for a sync record. The bucket prefix
// keeps records of one bucket contiguous for prefix scans.
func syncRecordKey(bucket models.Bucket, localID string) []byte {
	return []byte(string(bucket) + "\x00" + localID)
}

func syncRecordPrefix(bucket models.Bucket) []byte {
	return []byte(string(bucket) + "\x00")
}

// sdTransferKey encodes the tag big-endian so cursor order is tag order.
func sdTransferKey(tag int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(tag))
}

// State wraps a bbolt database for all persistent pipeline state. It is
// the only writer of the sync record, watermark, SD transfer and backup
// state tables.
type State struct {
	db  *bolt.DB
	now func() time.Time
}

// Load opens the state database at ~/.camera-sync/state.db, creating it
// if it does not exist.
func Load() (*State, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}

	return LoadAt(path)
}

// LoadAt opens a state database at the given path, creating it if it
// does not exist. Useful for tests that need an isolated database.
func LoadAt(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{syncRecordsBucket, syncTimestampsBucket, sdTransfersBucket, backupStateBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state db: %w", err)
	}

	return &State{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// --- Sync records ---

// SaveSyncRecords upserts records in a single transaction. A record that
// already exists for the same bucket and local ID is overwritten, keeping
// its original CreatedAt.
func (s *State) SaveSyncRecords(records []models.SyncRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := s.now().UTC()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(syncRecordsBucket)

		for _, r := range records {
			if !r.Bucket.Valid() {
				return fmt.Errorf("sync record %s has invalid bucket %q", r.LocalID, r.Bucket)
			}

			if r.LocalID == "" {
				return fmt.Errorf("sync record in %s has empty local id", r.Bucket)
			}

			key := syncRecordKey(r.Bucket, r.LocalID)

			r.CreatedAt = now
			if prev := b.Get(key); prev != nil {
				var old models.SyncRecord
				if err := json.Unmarshal(prev, &old); err == nil && !old.CreatedAt.IsZero() {
					r.CreatedAt = old.CreatedAt
				}
			}

			r.UpdatedAt = now
			if r.Status == "" {
				r.Status = models.SyncPending
			}

			data, err := json.Marshal(r)
			if err != nil {
				return err
			}

			if err := b.Put(key, data); err != nil {
				return err
			}
		}

		return nil
	})
}

// SyncRecord returns the record for a bucket and local ID, or nil if not found.
func (s *State) SyncRecord(bucket models.Bucket, localID string) (*models.SyncRecord, error) {
	var r *models.SyncRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(syncRecordsBucket).Get(syncRecordKey(bucket, localID))
		if v == nil {
			return nil
		}

		r = &models.SyncRecord{}

		return json.Unmarshal(v, r)
	})

	return r, err
}

// SyncRecords returns all records of one bucket ordered by local ID.
func (s *State) SyncRecords(bucket models.Bucket) ([]models.SyncRecord, error) {
	var records []models.SyncRecord

	prefix := syncRecordPrefix(bucket)

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(syncRecordsBucket).Cursor()

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var r models.SyncRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			records = append(records, r)
		}

		return nil
	})

	return records, err
}

// AllSyncRecords returns every persisted sync record.
func (s *State) AllSyncRecords() ([]models.SyncRecord, error) {
	var records []models.SyncRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(syncRecordsBucket).ForEach(func(_, v []byte) error {
			var r models.SyncRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			records = append(records, r)

			return nil
		})
	})

	return records, err
}

// SetSyncRecordStatus updates the status of an existing record. Returns
// false if no record exists for the key.
func (s *State) SetSyncRecordStatus(bucket models.Bucket, localID string, status models.SyncStatus) (bool, error) {
	found := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(syncRecordsBucket)
		key := syncRecordKey(bucket, localID)

		v := b.Get(key)
		if v == nil {
			return nil
		}

		var r models.SyncRecord
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}

		found = true
		r.Status = status
		r.UpdatedAt = s.now().UTC()

		data, err := json.Marshal(r)
		if err != nil {
			return err
		}

		return b.Put(key, data)
	})

	return found, err
}

// DeleteSyncRecord removes a record. Deleting an absent record is a no-op.
func (s *State) DeleteSyncRecord(bucket models.Bucket, localID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(syncRecordsBucket).Delete(syncRecordKey(bucket, localID))
	})
}

// --- Watermarks ---

// SyncTimestamp returns the watermark for a bucket, or 0 if none is stored.
func (s *State) SyncTimestamp(bucket models.Bucket) (int64, error) {
	var ts int64

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(syncTimestampsBucket).Get([]byte(bucket))
		if v == nil {
			return nil
		}

		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("parsing watermark for %s: %w", bucket, err)
		}

		ts = parsed

		return nil
	})

	return ts, err
}

// UpdateTimestamp replaces the watermark for a bucket.
func (s *State) UpdateTimestamp(bucket models.Bucket, ts int64) error {
	if !bucket.Valid() {
		return fmt.Errorf("invalid bucket %q", bucket)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(syncTimestampsBucket).Put([]byte(bucket), []byte(strconv.FormatInt(ts, 10)))
	})
}

// --- SD transfers ---

// InsertSdTransfer stores the row for a transfer tag, replacing any
// existing row with the same tag.
func (s *State) InsertSdTransfer(t models.SdTransfer) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}

		return tx.Bucket(sdTransfersBucket).Put(sdTransferKey(t.Tag), data)
	})
}

// SdTransfer returns the row for a tag, or nil if not found.
func (s *State) SdTransfer(tag int64) (*models.SdTransfer, error) {
	var t *models.SdTransfer

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sdTransfersBucket).Get(sdTransferKey(tag))
		if v == nil {
			return nil
		}

		t = &models.SdTransfer{}

		return json.Unmarshal(v, t)
	})

	return t, err
}

// AllSdTransfers returns every tracked SD card transfer in tag order.
func (s *State) AllSdTransfers() ([]models.SdTransfer, error) {
	var transfers []models.SdTransfer

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sdTransfersBucket).ForEach(func(_, v []byte) error {
			var t models.SdTransfer
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}

			transfers = append(transfers, t)

			return nil
		})
	})

	return transfers, err
}

// DeleteSdTransferByTag removes the row for a tag. Deleting an absent
// row is a no-op.
func (s *State) DeleteSdTransferByTag(tag int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sdTransfersBucket).Delete(sdTransferKey(tag))
	})
}

// --- Backup state ---

// SetBackupState persists the heartbeat state of a folder group.
func (s *State) SetBackupState(group models.BucketGroup, backupState models.BackupState) error {
	status := models.BackupStatus{
		Group:     group,
		State:     backupState,
		UpdatedAt: s.now().UTC(),
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(status)
		if err != nil {
			return err
		}

		return tx.Bucket(backupStateBucket).Put([]byte(group), data)
	})
}

// BackupStatuses returns the persisted heartbeat state of every group.
// Groups that never reported are returned as inactive.
func (s *State) BackupStatuses() ([]models.BackupStatus, error) {
	statuses := []models.BackupStatus{
		{Group: models.PrimaryGroup, State: models.BackupInactive},
		{Group: models.SecondaryGroup, State: models.BackupInactive},
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(backupStateBucket)

		for i := range statuses {
			v := b.Get([]byte(statuses[i].Group))
			if v == nil {
				continue
			}

			if err := json.Unmarshal(v, &statuses[i]); err != nil {
				return err
			}
		}

		return nil
	})

	return statuses, err
}

// DefaultPath returns ~/.camera-sync/state.db.
func DefaultPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(dir, ".camera-sync", "state.db"), nil
}
