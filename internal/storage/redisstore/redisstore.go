// Package redisstore implements the storage.Store interface backed by
// Redis, one hash per domain and one hash per node config. Field values
// are JSON blobs rather than individual scalar fields since a Domain
// subtree does not decompose into flat key/value pairs.
package redisstore

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/ieee8021/tsn-cnc/internal/ccref"
	"github.com/ieee8021/tsn-cnc/internal/cncerr"
	"github.com/ieee8021/tsn-cnc/pkg/sched"
	"github.com/ieee8021/tsn-cnc/pkg/tsn"
)

const (
	domainKeyPrefix = "cnc:domain:"
	configKeyPrefix = "cnc:config:"
	blobField       = "blob"
)

// RedisStore is a Store backend over a *redis.Client.
type RedisStore struct {
	mu          sync.Mutex // serializes read-modify-write against one domain/config hash
	client      *redis.Client
	ctx         context.Context
	ownerDomain tsn.DomainID
	ref         *ccref.Ref
}

// New wraps an already-constructed redis.Client. The caller owns the
// client's lifecycle (Close).
func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ctx: context.Background()}
}

func (rs *RedisStore) SetControllerRef(ref *ccref.Ref) { rs.ref = ref }

func domainKey(id tsn.DomainID) string { return domainKeyPrefix + string(id) }
func configKey(id tsn.NodeID) string   { return fmt.Sprintf("%s%d", configKeyPrefix, id) }

func (rs *RedisStore) Configure(domainID tsn.DomainID) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.ownerDomain = domainID

	exists, err := rs.client.HExists(rs.ctx, domainKey(domainID), blobField).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	if !exists {
		d := &tsn.Domain{DomainID: domainID, CNCEnabled: true}
		return rs.putDomainLocked(d)
	}
	return nil
}

func (rs *RedisStore) getDomainLocked(id tsn.DomainID) (*tsn.Domain, error) {
	blob, err := rs.client.HGet(rs.ctx, domainKey(id), blobField).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	var d tsn.Domain
	if err := json.Unmarshal([]byte(blob), &d); err != nil {
		return nil, fmt.Errorf("%w: decoding domain %s: %v", cncerr.ErrStorageIO, id, err)
	}
	return &d, nil
}

func (rs *RedisStore) putDomainLocked(d *tsn.Domain) error {
	blob, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding domain %s: %w", d.DomainID, err)
	}
	if err := rs.client.HSet(rs.ctx, domainKey(d.DomainID), blobField, blob).Err(); err != nil {
		return fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	return nil
}

// listDomainIDs scans for every domain hash currently stored. Used by
// operations that must search across all domains (GetDomainOfCuc,
// GetFreeStreamID).
func (rs *RedisStore) listDomainIDs() ([]tsn.DomainID, error) {
	keys, err := rs.client.Keys(rs.ctx, domainKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	ids := make([]tsn.DomainID, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, tsn.DomainID(k[len(domainKeyPrefix):]))
	}
	return ids, nil
}

func (rs *RedisStore) Select(reqs []tsn.RequestDomain, plannedAndModified bool) ([]*tsn.Domain, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := make([]*tsn.Domain, 0, len(reqs))
	for _, rd := range reqs {
		d, err := rs.getDomainLocked(rd.DomainID)
		if err != nil {
			return nil, err
		}
		if d == nil {
			continue
		}
		nd := &tsn.Domain{DomainID: d.DomainID, CNCEnabled: d.CNCEnabled}
		for _, rc := range rd.Cucs {
			cuc := d.FindCuc(rc.CucID)
			if cuc == nil {
				continue
			}
			ncuc := &tsn.Cuc{CucID: cuc.CucID}
			var wanted map[tsn.StreamID]struct{}
			if rc.StreamList != nil {
				wanted = make(map[tsn.StreamID]struct{}, len(rc.StreamList))
				for _, id := range rc.StreamList {
					wanted[id] = struct{}{}
				}
			}
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

func (rs *RedisStore) SetStream(cucID tsn.CucID, stream *tsn.Stream) error {
	return rs.SetStreams(cucID, []*tsn.Stream{stream})
}

func (rs *RedisStore) SetStreams(cucID tsn.CucID, streams []*tsn.Stream) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	d, err := rs.getDomainLocked(rs.ownerDomain)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: owner domain %s not configured", cncerr.ErrInvalidState, rs.ownerDomain)
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
	return rs.putDomainLocked(d)
}

func (rs *RedisStore) ModifyStreams(domains []*tsn.Domain) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, src := range domains {
		d, err := rs.getDomainLocked(src.DomainID)
		if err != nil {
			return err
		}
		if d == nil {
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
		if err := rs.putDomainLocked(d); err != nil {
			return err
		}
	}
	return nil
}

func (rs *RedisStore) SetConfigured(domains []*tsn.Domain, failed sched.FailedInterfaces) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, src := range domains {
		d, err := rs.getDomainLocked(src.DomainID)
		if err != nil {
			return err
		}
		if d == nil {
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
		if err := rs.putDomainLocked(d); err != nil {
			return err
		}
	}
	return nil
}

func (rs *RedisStore) RemoveStream(cucID tsn.CucID, streamID tsn.StreamID) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	d, err := rs.getDomainLocked(rs.ownerDomain)
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	cuc := d.FindCuc(cucID)
	if cuc == nil {
		return nil
	}
	filtered := cuc.Streams[:0]
	for _, s := range cuc.Streams {
		if s.StreamID != streamID {
			filtered = append(filtered, s)
		}
	}
	cuc.Streams = filtered
	return rs.putDomainLocked(d)
}

func (rs *RedisStore) RemoveAllStreams(cucID tsn.CucID) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	d, err := rs.getDomainLocked(rs.ownerDomain)
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	if cuc := d.FindCuc(cucID); cuc != nil {
		cuc.Streams = nil
	}
	return rs.putDomainLocked(d)
}

func (rs *RedisStore) GetDomainOfCuc(cucID tsn.CucID) (tsn.DomainID, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ids, err := rs.listDomainIDs()
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		d, err := rs.getDomainLocked(id)
		if err != nil {
			return "", err
		}
		if d != nil && d.FindCuc(cucID) != nil {
			return d.DomainID, nil
		}
	}
	return "", cncerr.ErrNotFound
}

func (rs *RedisStore) GetFreeStreamID() (tsn.StreamID, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ids, err := rs.listDomainIDs()
	if err != nil {
		return "", err
	}
	used := make(map[tsn.StreamID]struct{})
	for _, id := range ids {
		d, err := rs.getDomainLocked(id)
		if err != nil {
			return "", err
		}
		if d == nil {
			continue
		}
		for _, c := range d.Cucs {
			for _, s := range c.Streams {
				used[s.StreamID] = struct{}{}
			}
		}
	}

	for attempt := 0; attempt < 10000; attempt++ {
		var b [2]byte
		if _, err := rand.Read(b[:]); err != nil {
			return "", err
		}
		id := tsn.StreamID(fmt.Sprintf("00-00-00-00-00-00:%02X-%02X", b[0], b[1]))
		if _, taken := used[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free stream id after 10000 attempts", cncerr.ErrNotFound)
}

func (rs *RedisStore) GetConfig(nodeID tsn.NodeID) (*sched.Config, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	blob, err := rs.client.HGet(rs.ctx, configKey(nodeID), blobField).Result()
	if err == redis.Nil {
		return nil, cncerr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	var c sched.Config
	if err := json.Unmarshal([]byte(blob), &c); err != nil {
		return nil, fmt.Errorf("%w: decoding config for node %d: %v", cncerr.ErrStorageIO, nodeID, err)
	}
	return &c, nil
}

func (rs *RedisStore) GetAllConfigs() ([]*sched.Config, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	keys, err := rs.client.Keys(rs.ctx, configKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
	}
	out := make([]*sched.Config, 0, len(keys))
	for _, k := range keys {
		blob, err := rs.client.HGet(rs.ctx, k, blobField).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
		}
		var c sched.Config
		if err := json.Unmarshal([]byte(blob), &c); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %v", cncerr.ErrStorageIO, k, err)
		}
		out = append(out, &c)
	}
	return out, nil
}

func (rs *RedisStore) PutConfig(cfg *sched.Config) error {
	return rs.PutConfigs([]sched.Config{*cfg})
}

func (rs *RedisStore) PutConfigs(cfgs []sched.Config) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, c := range cfgs {
		blob, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding config for node %d: %w", c.NodeID, err)
		}
		if err := rs.client.HSet(rs.ctx, configKey(c.NodeID), blobField, blob).Err(); err != nil {
			return fmt.Errorf("%w: %v", cncerr.ErrStorageIO, err)
		}
	}
	return nil
}
