// Package jsonfile keeps session values in a JSON file so they survive
// process restarts. Every write goes straight to disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

type JSONFile struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

type CacheStruct struct {
	Origins map[string]map[string]string
}

func initFile(fileName string) error {
	if err := os.MkdirAll(filepath.Dir(fileName), 0700); err != nil {
		return fmt.Errorf("error creating session dir: %w", err)
	}
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(file, `{
	"Origins": {}
}`)
	if err != nil {
		return err
	}
	return file.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cache)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// New opens the session file, creating it when it does not exist yet.
func New(fileName string) (*JSONFile, error) {
	db := &JSONFile{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := initFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}
	if db.Cache.Origins == nil {
		db.Cache.Origins = map[string]map[string]string{}
	}

	return db, nil
}

// NewInMemory returns a store that never touches the disk.
func NewInMemory() *JSONFile {
	return &JSONFile{
		Cache: CacheStruct{
			Origins: map[string]map[string]string{},
		},
	}
}

func (db *JSONFile) Get(ctx context.Context, origin, key string) (string, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	value, found := db.Cache.Origins[origin][key]

	return value, found, nil
}

func (db *JSONFile) Set(ctx context.Context, origin, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	next := db.cloneOrigins()
	if next[origin] == nil {
		next[origin] = map[string]string{}
	}
	next[origin][key] = value

	return db.commit(next)
}

func (db *JSONFile) Remove(ctx context.Context, origin, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.Cache.Origins[origin][key]; !ok {
		return nil
	}
	next := db.cloneOrigins()
	delete(next[origin], key)
	if len(next[origin]) == 0 {
		delete(next, origin)
	}

	return db.commit(next)
}

func (db *JSONFile) cloneOrigins() map[string]map[string]string {
	origins := make(map[string]map[string]string, len(db.Cache.Origins))
	for origin, values := range db.Cache.Origins {
		copied := make(map[string]string, len(values))
		for key, value := range values {
			copied[key] = value
		}
		origins[origin] = copied
	}

	return origins
}

// commit writes origins to disk and only then makes them the cache, so a
// failed write leaves memory and file in agreement.
func (db *JSONFile) commit(origins map[string]map[string]string) error {
	next := CacheStruct{Origins: origins}
	if db.fileName != "" {
		if err := writeToJSONFile(db.fileName, next); err != nil {
			return err
		}
	}
	db.Cache = next

	return nil
}

func (db *JSONFile) flush() error {
	if db.fileName == "" {
		return nil
	}

	return writeToJSONFile(db.fileName, db.Cache)
}

func (db *JSONFile) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.flush()
}
