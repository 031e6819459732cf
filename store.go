package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Job status values, in the order a healthy job moves through them
const (
	StatusInitialized = "initialized"
	StatusRunning     = "running"
	StatusCollect     = "collect"
	StatusFinished    = "finished"
	StatusAborted     = "aborted"
)

// Project is the on-disk store for jobs and their output: a job table
// plus one path/value row per stored entry. Values are JSON so float
// arrays and string lists round-trip without separate column types.
type Project struct {
	db   *sql.DB
	path string
}

// OpenProject opens or creates the project store at path
func OpenProject(path string) (*Project, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening project %s: %w", path, err)
	}
	p := &Project{db: db, path: path}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing project %s: %w", path, err)
	}
	return p, nil
}

func (p *Project) initSchema() error {
	_, err := p.db.Exec(`
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		master_id INTEGER,
		status TEXT NOT NULL,
		created DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS jobdata (
		job_id INTEGER NOT NULL,
		path TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (job_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_master ON jobs(master_id);
	`)
	return err
}

// Close closes the underlying database
func (p *Project) Close() error { return p.db.Close() }

// Path returns the store's filename
func (p *Project) Path() string { return p.path }

// Job is one row of the job table. MasterID is zero for jobs without
// a master.
type Job struct {
	p *Project

	ID       int64
	Name     string
	MasterID int64
	Status   string
}

// NewJob creates a job record, or returns the existing one when a job
// of that name is already in the project
func (p *Project) NewJob(name string) (*Job, error) {
	if j, err := p.JobByName(name); err == nil {
		return j, nil
	}
	res, err := p.db.Exec(
		"INSERT INTO jobs (name, master_id, status) VALUES (?, 0, ?)",
		name, StatusInitialized)
	if err != nil {
		return nil, fmt.Errorf("creating job %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Job{p: p, ID: id, Name: name, Status: StatusInitialized}, nil
}

// JobByName loads the job called name
func (p *Project) JobByName(name string) (*Job, error) {
	return p.scanJob(p.db.QueryRow(
		"SELECT id, name, master_id, status FROM jobs WHERE name = ?", name))
}

// Inspect loads the job with the given id for reading
func (p *Project) Inspect(id int64) (*Job, error) {
	return p.scanJob(p.db.QueryRow(
		"SELECT id, name, master_id, status FROM jobs WHERE id = ?", id))
}

func (p *Project) scanJob(row *sql.Row) (*Job, error) {
	j := &Job{p: p}
	err := row.Scan(&j.ID, &j.Name, &j.MasterID, &j.Status)
	if err != nil {
		return nil, fmt.Errorf("loading job: %w", err)
	}
	return j, nil
}

// Jobs lists every job in the project in creation order
func (p *Project) Jobs() ([]*Job, error) {
	rows, err := p.db.Query(
		"SELECT id, name, master_id, status FROM jobs ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []*Job
	for rows.Next() {
		j := &Job{p: p}
		if err := rows.Scan(&j.ID, &j.Name, &j.MasterID, &j.Status); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// SetMaster records the master job driving this one
func (j *Job) SetMaster(id int64) error {
	_, err := j.p.db.Exec("UPDATE jobs SET master_id = ? WHERE id = ?", id, j.ID)
	if err == nil {
		j.MasterID = id
	}
	return err
}

// SetStatus moves the job to a new status
func (j *Job) SetStatus(status string) error {
	_, err := j.p.db.Exec("UPDATE jobs SET status = ? WHERE id = ?", status, j.ID)
	if err == nil {
		j.Status = status
	}
	return err
}

// ChildIDs returns the ids of the jobs mastered by j, in creation
// order
func (j *Job) ChildIDs() ([]int64, error) {
	rows, err := j.p.db.Query(
		"SELECT id FROM jobs WHERE master_id = ? ORDER BY id", j.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Open returns a handle scoped to group under the job's data, in the
// manner of opening a subgroup in a hierarchical data file
func (j *Job) Open(group string) *Group {
	return &Group{j: j, path: strings.Trim(group, "/")}
}

// Group is a scope within a job's stored data. Nested Opens join
// their paths with slashes.
type Group struct {
	j    *Job
	path string
}

// Open returns a handle for sub nested under g
func (g *Group) Open(sub string) *Group {
	return &Group{j: g.j, path: g.path + "/" + strings.Trim(sub, "/")}
}

// Path returns the group's full slash-joined path
func (g *Group) Path() string { return g.path }

// Put stores val under key in the group, replacing any previous value
func (g *Group) Put(key string, val interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("storing %s/%s: %w", g.path, key, err)
	}
	_, err = g.j.p.db.Exec(
		"INSERT OR REPLACE INTO jobdata (job_id, path, value) VALUES (?, ?, ?)",
		g.j.ID, g.path+"/"+key, string(data))
	return err
}

func (g *Group) get(key string, dst interface{}) error {
	var data string
	err := g.j.p.db.QueryRow(
		"SELECT value FROM jobdata WHERE job_id = ? AND path = ?",
		g.j.ID, g.path+"/"+key).Scan(&data)
	if err == sql.ErrNoRows {
		return fmt.Errorf("job %s: no entry %s/%s", g.j.Name, g.path, key)
	} else if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dst)
}

// GetFloats reads a float array stored under key
func (g *Group) GetFloats(key string) (vals []float64, err error) {
	err = g.get(key, &vals)
	return
}

// GetFloat reads a single float stored under key
func (g *Group) GetFloat(key string) (val float64, err error) {
	err = g.get(key, &val)
	return
}

// GetString reads a string stored under key
func (g *Group) GetString(key string) (val string, err error) {
	err = g.get(key, &val)
	return
}

// GetStrings reads a string list stored under key
func (g *Group) GetStrings(key string) (vals []string, err error) {
	err = g.get(key, &vals)
	return
}

// GetInt reads an integer stored under key
func (g *Group) GetInt(key string) (val int, err error) {
	err = g.get(key, &val)
	return
}

// Keys lists the entries directly under the group
func (g *Group) Keys() ([]string, error) {
	rows, err := g.j.p.db.Query(
		"SELECT path FROM jobdata WHERE job_id = ? AND path LIKE ? ORDER BY path",
		g.j.ID, g.path+"/%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		rest := strings.TrimPrefix(path, g.path+"/")
		if !strings.Contains(rest, "/") {
			keys = append(keys, rest)
		}
	}
	return keys, rows.Err()
}
