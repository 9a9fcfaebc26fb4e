// Package filestore implements the storage.Store interface as an
// in-memory tree guarded by a reader-writer lock, persisted to two
// newline-delimited JSON files with write-to-temp-then-rename.
package filestore

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/internal/cncerr"
	"github.com/ieee8021/tsn-cnc/internal/cnclog"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

// FileStore is the reference Store backend.
type FileStore struct {
	mu sync.RWMutex

	dir         string
	domains     map[tsn.DomainID]*tsn.Domain
	configs     map[tsn.NodeID]*sched.Config
	ownerDomain tsn.DomainID

	ref *ccref.Ref
}

const (
	domainsFile = "domains.ndjson"
	configsFile = "configs.ndjson"
)

// New returns a FileStore persisting under dir. Configure must be
// called before use.
func New(dir string) *FileStore {
	return &FileStore{
		dir:     dir,
		domains: make(map[tsn.DomainID]*tsn.Domain),
		configs: make(map[tsn.NodeID]*sched.Config),
	}
}

func (fs *FileStore) SetControllerRef(ref *ccref.Ref) { fs.ref = ref }

// Configure loads persisted domains/configs from dir, or seeds a single
// CNC-enabled domain named domainID if no domains file exists yet.
func (fs *FileStore) Configure(domainID tsn.DomainID) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.ownerDomain = domainID

	loadedDomains, err := loadNDJSON[tsn.Domain](filepath.Join(fs.dir, domainsFile))
	if err != nil {
		return fmt.Errorf("%w: loading domains: %v", cncerr.ErrStorageIO, err)
	}
	if loadedDomains == nil {
		fs.domains[domainID] = &tsn.Domain{DomainID: domainID, CNCEnabled: true}
		cnclog.WithDomain(string(domainID)).Info("storage: seeded new domain")
	} else {
		for _, d := range loadedDomains {
			dd := d
			fs.domains[dd.DomainID] = &dd
		}
	}

	loadedConfigs, err := loadNDJSON[sched.Config](filepath.Join(fs.dir, configsFile))
	if err != nil {
		return fmt.Errorf("%w: loading configs: %v", cncerr.ErrStorageIO, err)
	}
	for _, c := range loadedConfigs {
		cc := c
		fs.configs[cc.NodeID] = &cc
	}
	return nil
}

func (fs *FileStore) Select(reqs []tsn.RequestDomain, plannedAndModified bool) ([]*tsn.Domain, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]*tsn.Domain, 0, len(reqs))
	for _, rd := range reqs {
		d, ok := fs.domains[rd.DomainID]
		if !ok {
			continue
		}
		nd := &tsn.Domain{DomainID: d.DomainID, CNCEnabled: d.CNCEnabled}
		for _, rc := range rd.Cucs {
			cuc := d.FindCuc(rc.CucID)
			if cuc == nil {
				continue
			}
			ncuc := &tsn.Cuc{CucID: cuc.CucID}
			wanted := streamIDSet(rc.StreamList)
			for _, s := range cuc.Streams {
				if wanted != nil {
					if _, ok := wanted[s.StreamID]; !ok {
						continue
					}
				}
				if plannedAndModified && s.Status != tsn.StreamStatusPlanned && s.Status != tsn.StreamStatusModified {
					continue
				}
				ncuc.Streams = append(ncuc.Streams, s.Clone())
			}
			nd.Cucs = append(nd.Cucs, ncuc)
		}
		out = append(out, nd)
	}
	return out, nil
}

func streamIDSet(ids []tsn.StreamID) map[tsn.StreamID]struct{} {
	if ids == nil {
		return nil
	}
	m := make(map[tsn.StreamID]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func (fs *FileStore) SetStream(cucID tsn.CucID, stream *tsn.Stream) error {
	return fs.SetStreams(cucID, []*tsn.Stream{stream})
}

func (fs *FileStore) SetStreams(cucID tsn.CucID, streams []*tsn.Stream) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, ok := fs.domains[fs.ownerDomain]
	if !ok {
		return fmt.Errorf("%w: owner domain %s not configured", cncerr.ErrInvalidState, fs.ownerDomain)
	}
	cuc := d.EnsureCuc(cucID)
	for _, s := range streams {
		if existing := cuc.FindStream(s.StreamID); existing != nil {
			s.Status = tsn.StreamStatusModified
			*existing = *s.Clone()
		} else {
			cuc.Streams = append(cuc.Streams, s.Clone())
		}
	}
	return fs.persistDomainsLocked()
}

func (fs *FileStore) ModifyStreams(domains []*tsn.Domain) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, src := range domains {
		d, ok := fs.domains[src.DomainID]
		if !ok {
			continue
		}
		for _, srcCuc := range src.Cucs {
			cuc := d.EnsureCuc(srcCuc.CucID)
			for _, srcStream := range srcCuc.Streams {
				if existing := cuc.FindStream(srcStream.StreamID); existing != nil {
					*existing = *srcStream.Clone()
				} else {
					cuc.Streams = append(cuc.Streams, srcStream.Clone())
				}
			}
		}
	}
	return fs.persistDomainsLocked()
}

func (fs *FileStore) SetConfigured(domains []*tsn.Domain, failed sched.FailedInterfaces) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, src := range domains {
		d, ok := fs.domains[src.DomainID]
		if !ok {
			continue
		}
		for _, srcCuc := range src.Cucs {
			cuc := d.FindCuc(srcCuc.CucID)
			if cuc == nil {
				continue
			}
			for _, srcStream := range srcCuc.Streams {
				existing := cuc.FindStream(srcStream.StreamID)
				if existing == nil {
					continue
				}
				if failed.AffectsStream(srcStream.StreamID) {
					existing.Status = tsn.StreamStatusModified
				} else {
					existing.Status = tsn.StreamStatusConfigured
				}
			}
		}
	}
	return fs.persistDomainsLocked()
}

func (fs *FileStore) RemoveStream(cucID tsn.CucID, streamID tsn.StreamID) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, ok := fs.domains[fs.ownerDomain]
	if !ok {
		return nil
	}
	cuc := d.FindCuc(cucID)
	if cuc == nil {
		return fs.persistDomainsLocked()
	}
	filtered := cuc.Streams[:0]
	for _, s := range cuc.Streams {
		if s.StreamID != streamID {
			filtered = append(filtered, s)
		}
	}
	cuc.Streams = filtered
	return fs.persistDomainsLocked()
}

func (fs *FileStore) RemoveAllStreams(cucID tsn.CucID) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, ok := fs.domains[fs.ownerDomain]
	if !ok {
		return nil
	}
	if cuc := d.FindCuc(cucID); cuc != nil {
		cuc.Streams = nil
	}
	return fs.persistDomainsLocked()
}

func (fs *FileStore) GetDomainOfCuc(cucID tsn.CucID) (tsn.DomainID, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, d := range fs.domains {
		if d.FindCuc(cucID) != nil {
			return d.DomainID, nil
		}
	}
	return "", cncerr.ErrNotFound
}

// GetFreeStreamID generates a stream id with MAC prefix
// 00-00-00-00-00-00 and a random two-byte suffix, rejecting collisions
// against every stream in every domain. This is the reference fallback
// strategy; production CUC deployments assign their own ids.
func (fs *FileStore) GetFreeStreamID() (tsn.StreamID, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	used := make(map[tsn.StreamID]struct{})
	for _, d := range fs.domains {
		for _, c := range d.Cucs {
			for _, s := range c.Streams {
				used[s.StreamID] = struct{}{}
			}
		}
	}

	for attempt := 0; attempt < 10000; attempt++ {
		var b [2]byte
		if _, err := rand.Read(b[:]); err != nil {
			return "", fmt.Errorf("generating random stream id: %w", err)
		}
		id := tsn.StreamID(fmt.Sprintf("00-00-00-00-00-00:%02X-%02X", b[0], b[1]))
		if _, taken := used[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free stream id after 10000 attempts", cncerr.ErrNotFound)
}

func (fs *FileStore) GetConfig(nodeID tsn.NodeID) (*sched.Config, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	c, ok := fs.configs[nodeID]
	if !ok {
		return nil, cncerr.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (fs *FileStore) GetAllConfigs() ([]*sched.Config, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]*sched.Config, 0, len(fs.configs))
	for _, c := range fs.configs {
		cc := *c
		out = append(out, &cc)
	}
	return out, nil
}

func (fs *FileStore) PutConfig(cfg *sched.Config) error {
	return fs.PutConfigs([]sched.Config{*cfg})
}

func (fs *FileStore) PutConfigs(cfgs []sched.Config) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, c := range cfgs {
		cc := c
		fs.configs[cc.NodeID] = &cc
	}
	return fs.persistConfigsLocked()
}

func (fs *FileStore) persistDomainsLocked() error {
	all := make([]*tsn.Domain, 0, len(fs.domains))
	for _, d := range fs.domains {
		all = append(all, d)
	}
	if err := writeNDJSON(filepath.Join(fs.dir, domainsFile), all); err != nil {
		cnclog.Logger.WithError(err).Error("storage: failed to persist domains")
		return fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	return nil
}

func (fs *FileStore) persistConfigsLocked() error {
	all := make([]*sched.Config, 0, len(fs.configs))
	for _, c := range fs.configs {
		all = append(all, c)
	}
	if err := writeNDJSON(filepath.Join(fs.dir, configsFile), all); err != nil {
		cnclog.Logger.WithError(err).Error("storage: failed to persist configs")
		return fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	return nil
}

// writeNDJSON writes one JSON value per line to a temp file in the same
// directory, then renames it over path — an atomic replace on the same
// filesystem, so a reader never observes a partially written file.
func writeNDJSON[T any](path string, values []*T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// loadNDJSON returns nil, nil if path does not exist — the "seed fresh
// state" case — and an error otherwise.
func loadNDJSON[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []T
	dec := json.NewDecoder(bufio.NewReader(f))
	for dec.More() {
		var v T
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
