package catscope

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileStoreOptions configure a FileStore.
type FileStoreOptions struct {
	// EnableWatcher reloads the store whenever the backing file is modified
	// externally, e.g. by an inspector editing level identifiers in place.
	EnableWatcher bool

	// Logger receives internal diagnostics. Defaults to a silenced logger.
	Logger *slog.Logger
}

// fileData is the state shared by all subspace views of a FileStore.
type fileData struct {
	mu     sync.Mutex
	file   string
	kv     map[string]string
	watch  bool
	doneCh chan struct{}
	logger *slog.Logger
}

// FileStore is a Store persisted as a flat YAML mapping in a single file.
// Every Set rewrites the file, so the full keyspace is always visible to
// anyone inspecting it.
type FileStore struct {
	data *fileData
	name string
}

// NewFileStore creates a file-backed store rooted at namespace. An existing
// backing file is loaded; a missing or unreadable file yields an empty store.
func NewFileStore(namespace, file string, opts *FileStoreOptions) *FileStore {
	o := FileStoreOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.New(NewNilHandler())
	}

	d := &fileData{
		file:   file,
		kv:     map[string]string{},
		watch:  o.EnableWatcher,
		logger: o.Logger,
	}
	d.load()

	if d.watch {
		d.doneCh = d.initFileWatcher()
	}

	return &FileStore{data: d, name: namespace}
}

func (s *FileStore) Get(key string, opts *GetOptions) (string, bool) {
	o := GetOptions{}
	if opts != nil {
		o = *opts
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	k := joinKey(s.name, key)
	if v, ok := s.data.kv[k]; ok {
		return v, true
	}
	if o.WriteDefault {
		s.data.kv[k] = o.Default
		s.data.save()
	}
	return o.Default, false
}

func (s *FileStore) Set(key, value string) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.kv[joinKey(s.name, key)] = value
	s.data.save()
}

func (s *FileStore) Subspace(name string) Store {
	return &FileStore{data: s.data, name: joinKey(s.name, name)}
}

func (s *FileStore) Name() string {
	return s.name
}

// Reload discards the in-memory state and re-reads the backing file.
func (s *FileStore) Reload() {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.kv = map[string]string{}
	s.data.load()
}

// Close stops the file watcher, if one is running.
func (s *FileStore) Close() {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.watch = false
	if s.data.doneCh != nil {
		close(s.data.doneCh)
		s.data.doneCh = nil
	}
}

// load merges the backing file into kv. Callers hold no lock during
// construction; concurrent callers must hold mu.
func (d *fileData) load() {
	data, err := os.ReadFile(d.file)
	if err != nil {
		d.logger.Debug(fmt.Sprintf("error reading store file (%s): %s", d.file, err.Error()))
		return
	}

	var kv map[string]string
	if err := yaml.Unmarshal(data, &kv); err != nil {
		d.logger.Debug(fmt.Sprintf("error unmarshalling store file (%s): %s", d.file, err.Error()))
		return
	}

	for k, v := range kv {
		d.kv[k] = v
	}
}

// save rewrites the backing file from kv. Callers must hold mu.
func (d *fileData) save() {
	data, err := yaml.Marshal(d.kv)
	if err != nil {
		d.logger.Debug(fmt.Sprintf("error marshalling store file (%s): %s", d.file, err.Error()))
		return
	}
	if err := os.WriteFile(d.file, data, 0o644); err != nil {
		d.logger.Debug(fmt.Sprintf("error writing store file (%s): %s", d.file, err.Error()))
	}
}

// initFileWatcher watches the backing file for external changes and reloads
// the keyspace when one occurs, so that newly created Loggers resolve against
// the edited state without restarting.
func (d *fileData) initFileWatcher() chan struct{} {
	if !checkFileExists(d.file) {
		d.logger.Debug(fmt.Sprintf("store file %q is missing! -> file watcher is disabled.", d.file))
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.logger.Debug(err.Error())
		return nil
	}

	if err = watcher.Add(d.file); err != nil {
		d.logger.Debug(err.Error())
		return nil
	}

	doneCh := make(chan struct{})
	// Start listening for events.
	go func() {
		d.logger.Debug("store file watcher started.")

		closeWatcher := func() {
			if err := watcher.Close(); err != nil {
				d.logger.Debug("store file watcher error: " + err.Error())
				return
			}
			d.logger.Debug("store file watcher stopped.")
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				switch {
				case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
					d.logger.Debug(fmt.Sprintf("store file (%s) is gone.", d.file))
					closeWatcher()
					return
				case event.Has(fsnotify.Write):
					d.logger.Debug(fmt.Sprintf("store file (%s) was modified.", event.Name))
					d.mu.Lock()
					d.kv = map[string]string{}
					d.load()
					// Editors often replace instead of rewriting the file,
					// so the watch is re-armed after every event.
					if d.watch {
						d.doneCh = d.initFileWatcher()
					}
					d.mu.Unlock()
					closeWatcher()
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.logger.Debug("store file watcher error: " + err.Error())
			case <-doneCh:
				closeWatcher()
				return
			}
		}
	}()

	return doneCh
}

// checkFileExists returns true if a file exists at that location on disk.
func checkFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, os.ErrNotExist)
}
