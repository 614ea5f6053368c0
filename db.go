package main

import (
	"bytes"
	"encoding/gob"
	"path"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// The default target chart lives in a small bolt database in the config
// dir. A chart registered once with -save-default serves every later run
// that does not pass -chart.
var (
	chartBucket     = []byte("chart")
	defaultChartKey = []byte("default")
)

func openChartDB(dir string) (*bolt.DB, error) {
	db, err := bolt.Open(path.Join(dir, "depara.db"), 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening chart db in %v", dir)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(chartBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating chart bucket")
	}
	return db, nil
}

// saveDefaultChart stores the chart as one gob blob so load returns entries
// in their original order.
func saveDefaultChart(db *bolt.DB, entries []ChartEntry) error {
	var val bytes.Buffer
	if err := gob.NewEncoder(&val).Encode(entries); err != nil {
		return errors.Wrap(err, "encoding chart")
	}
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(chartBucket).Put(defaultChartKey, val.Bytes())
	})
}

func loadDefaultChart(db *bolt.DB) ([]ChartEntry, error) {
	var entries []ChartEntry
	err := db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chartBucket).Get(defaultChartKey)
		if v == nil {
			return errors.New("no default chart registered; run once with -chart and -save-default")
		}
		return gob.NewDecoder(bytes.NewBuffer(v)).Decode(&entries)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
