/***************************************************************
 *
 * Copyright (C) 2025, The rcpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

package rcclient

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DirEntry describes one object in a remote listing.
type DirEntry struct {
	Path     string `json:"Path"`
	Name     string `json:"Name"`
	Size     int64  `json:"Size"`
	MimeType string `json:"MimeType"`
	ModTime  string `json:"ModTime"`
	IsDir    bool   `json:"IsDir"`
}

// Remote is one configured rclone backend.
type Remote struct {
	Name string
	Type string
}

const remotesCacheKey = "remotes"

// CopyFile submits an asynchronous server-side file copy and returns the
// daemon-assigned job id.  The copy itself runs in the daemon; callers are
// expected to register the id with a jobs.Registry and poll.
func (c *Client) CopyFile(ctx context.Context, srcFs, srcRemote, dstFs, dstRemote string) (int64, error) {
	params := map[string]any{
		"srcFs":     srcFs,
		"srcRemote": srcRemote,
		"dstFs":     dstFs,
		"dstRemote": dstRemote,
		"_async":    true,
	}
	var resp struct {
		JobID int64 `json:"jobid"`
	}
	if err := c.call(ctx, "operations/copyfile", params, &resp); err != nil {
		return 0, errors.Wrap(err, "failed to submit copy")
	}
	if resp.JobID <= 0 {
		return 0, errors.Errorf("daemon returned invalid job id %d for copy submission", resp.JobID)
	}
	log.Debugf("Submitted copy %s:%s -> %s:%s as job %d", srcFs, srcRemote, dstFs, dstRemote, resp.JobID)
	return resp.JobID, nil
}

// DeleteFile removes a single remote object.  Synchronous; carries no job
// state.
func (c *Client) DeleteFile(ctx context.Context, fs, remote string) error {
	params := map[string]any{"fs": fs, "remote": remote}
	return c.call(ctx, "operations/deletefile", params, nil)
}

// Ls lists the directory at remote within fs.  Returns ErrDirNotFound when
// the daemon reports the path does not exist.
func (c *Client) Ls(ctx context.Context, fs, remote string) ([]DirEntry, error) {
	params := map[string]any{"fs": fs, "remote": remote}
	var resp struct {
		List []DirEntry `json:"list"`
	}
	if err := c.call(ctx, "operations/list", params, &resp); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && strings.Contains(statusErr.Message, "directory not found") {
			return nil, errors.Wrapf(ErrDirNotFound, "%s:%s", fs, remote)
		}
		return nil, err
	}
	return resp.List, nil
}

// Stat fetches metadata for a single remote object.  A nil entry with a nil
// error means the object does not exist.
func (c *Client) Stat(ctx context.Context, fs, remote string) (*DirEntry, error) {
	params := map[string]any{"fs": fs, "remote": remote}
	var resp struct {
		Item *DirEntry `json:"item"`
	}
	if err := c.call(ctx, "operations/stat", params, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Hashsum computes checksums for every object under fs with the given hash
// type (md5, sha1, ...).  Returns a path -> digest map.
func (c *Client) Hashsum(ctx context.Context, fs, hashType string) (map[string]string, error) {
	params := map[string]any{"fs": fs, "hashType": hashType}
	var resp struct {
		Hashsum map[string]string `json:"hashsum"`
	}
	if err := c.call(ctx, "operations/hashsum", params, &resp); err != nil {
		return nil, err
	}
	return resp.Hashsum, nil
}

// ListRemotes enumerates the configured backends via config/dump.  Results
// are cached briefly; remote configuration changes rarely relative to how
// often listings are rendered.
func (c *Client) ListRemotes(ctx context.Context) ([]Remote, error) {
	if item := c.remotesCache.Get(remotesCacheKey); item != nil {
		return item.Value(), nil
	}

	var dump map[string]struct {
		Type string `json:"type"`
	}
	if err := c.call(ctx, "config/dump", map[string]any{"long": true}, &dump); err != nil {
		return nil, errors.Wrap(err, "failed to dump remote configuration")
	}

	remotes := make([]Remote, 0, len(dump))
	for name, cfg := range dump {
		remotes = append(remotes, Remote{Name: name + ":", Type: cfg.Type})
	}
	sort.Slice(remotes, func(i, j int) bool { return remotes[i].Name < remotes[j].Name })

	c.remotesCache.Set(remotesCacheKey, remotes, ttlcache.DefaultTTL)
	return remotes, nil
}

// Quit asks the daemon to shut itself down.
func (c *Client) Quit(ctx context.Context) error {
	return c.call(ctx, "core/quit", nil, nil)
}

// JobList returns the ids of every job the daemon still retains.  This is
// the authoritative live set; ids the daemon has evicted are absent.  Some
// daemon builds report the ids as strings, so both encodings are accepted.
func (c *Client) JobList(ctx context.Context) ([]int64, error) {
	var resp struct {
		JobIDs []json.Number `json:"jobids"`
	}
	if err := c.call(ctx, "job/list", nil, &resp); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(resp.JobIDs))
	for _, n := range resp.JobIDs {
		id, err := n.Int64()
		if err != nil {
			return nil, errors.Wrapf(err, "daemon reported non-integer job id %q", n.String())
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JobStatusRaw fetches the raw job/status payload for one job.  Decoding is
// left to the jobs package.
func (c *Client) JobStatusRaw(ctx context.Context, jobid int64) (json.RawMessage, error) {
	return c.Call(ctx, "job/status", map[string]any{"jobid": jobid})
}

// CoreStats fetches the raw core/stats payload, optionally scoped to one
// stats group (e.g. "job/42").
func (c *Client) CoreStats(ctx context.Context, group string) (json.RawMessage, error) {
	params := map[string]any{}
	if group != "" {
		params["group"] = group
	}
	return c.Call(ctx, "core/stats", params)
}

// GroupList returns the daemon's stats group names.  The daemon reports
// null for the empty set.
func (c *Client) GroupList(ctx context.Context) ([]string, error) {
	var resp struct {
		Groups []string `json:"groups"`
	}
	if err := c.call(ctx, "core/group-list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

// StatsDelete drops the accumulated stats for a group.
func (c *Client) StatsDelete(ctx context.Context, group string) error {
	return c.call(ctx, "core/stats-delete", map[string]any{"group": group}, nil)
}

// JobStop asks the daemon to stop a job.  The daemon acknowledges with an
// empty JSON object; anything else means the stop did not take effect and
// is surfaced as *StopNotAcknowledgedError.  Stopping is fire-and-forget on
// the daemon side: an acknowledged stop does not imply the job has finished.
func (c *Client) JobStop(ctx context.Context, jobid int64) error {
	raw, err := c.Call(ctx, "job/stop", map[string]any{"jobid": jobid})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return &StopNotAcknowledgedError{JobID: jobid, Body: statusErr.Message}
		}
		return err
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil || len(body) > 0 {
		return &StopNotAcknowledgedError{JobID: jobid, Body: strings.TrimSpace(string(raw))}
	}
	return nil
}
