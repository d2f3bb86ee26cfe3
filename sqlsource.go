package dbmove

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// sqlFilenamePattern matches "NNNNNNNNNNNN_freeform.sql", case-insensitive
// on the extension, per spec §4.3.
var sqlFilenamePattern = regexp.MustCompile(`^(\d{12})_.+\.sql$`)

// parseSQLEntry recognizes a migrations-directory entry as a SQL migration
// unit. Non-matching entries (directories, wrong extension, no 12-digit
// prefix) are reported via ok=false and are silently ignored by the caller.
func parseSQLEntry(dir string, entry os.DirEntry) (Job, bool) {
	if entry.IsDir() {
		return Job{}, false
	}
	name := entry.Name()
	lower := caseFoldExt(name)
	match := sqlFilenamePattern.FindStringSubmatch(lower)
	if match == nil {
		return Job{}, false
	}
	version, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return Job{}, false
	}
	return Job{
		Version:     version,
		Description: "SQL Migration: " + name,
		Kind:        JobSQL,
		ScriptPath:  filepath.Join(dir, name),
		SourceName:  name,
	}, true
}

// caseFoldExt lower-cases only the file extension so the 12-digit prefix and
// freeform name keep their original case (the regex is case-sensitive on
// digits anyway, but this keeps ".SQL" and ".Sql" matching ".sql").
func caseFoldExt(name string) string {
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	return base + toLowerASCII(ext)
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// readScript reads a SQL migration unit's script file verbatim. Contents
// are never parsed or validated — they are executed as-is, per spec §4.3.
func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// scanSQLUnits scans dir for SQL migration units, ignoring everything that
// doesn't match the filename pattern.
func scanSQLUnits(dir string, entries []os.DirEntry) []Job {
	var jobs []Job
	for _, entry := range entries {
		if job, ok := parseSQLEntry(dir, entry); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs
}
