// Package storage keeps the comic cache on disk.
//
// The cache directory holds one record file in the block format of package
// comic plus every downloaded image under its original file name.
//
// Features:
//   - Atomic rewrites of the record file using a temporary file, sync and rename
//   - Atomic image writes, so an interrupted download never looks cached
//   - Self-healing load: records whose image is gone are dropped
//
// Usage:
//
//	store, err := storage.NewStore(cfg.Cache.Dir(), cfg.Cache.DataFile, log)
//	if err != nil {
//	    return err
//	}
//	coll, err := store.Load()
//	...
//	err = store.Save(coll)
package storage
