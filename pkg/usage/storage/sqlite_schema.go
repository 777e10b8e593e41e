package storage

// SchemaVersion is the current usage database schema version.
const SchemaVersion = 1

// Schema creates the usage database. Timestamps are stored as Unix
// nanoseconds so both drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS usage_records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,

    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    total_tokens INTEGER NOT NULL DEFAULT 0,
    estimated_cost REAL NOT NULL DEFAULT 0,

    prompt TEXT,
    completion TEXT,

    timestamp_ns INTEGER NOT NULL,
    user_id TEXT,
    session_id TEXT,
    tags TEXT,
    response_time_ms INTEGER,
    metadata TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_usage_user_id ON usage_records(user_id);
CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON usage_records(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(provider, model);
`

// InsertSchemaVersion records the applied schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version) VALUES (?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion reads the newest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO usage_records (
    id, provider, model,
    prompt_tokens, completion_tokens, total_tokens, estimated_cost,
    prompt, completion,
    timestamp_ns, user_id, session_id, tags, response_time_ms, metadata
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    provider = excluded.provider,
    model = excluded.model,
    prompt_tokens = excluded.prompt_tokens,
    completion_tokens = excluded.completion_tokens,
    total_tokens = excluded.total_tokens,
    estimated_cost = excluded.estimated_cost,
    prompt = excluded.prompt,
    completion = excluded.completion,
    timestamp_ns = excluded.timestamp_ns,
    user_id = excluded.user_id,
    session_id = excluded.session_id,
    tags = excluded.tags,
    response_time_ms = excluded.response_time_ms,
    metadata = excluded.metadata;
`

const selectRecords = `
SELECT id, provider, model,
    prompt_tokens, completion_tokens, total_tokens, estimated_cost,
    prompt, completion,
    timestamp_ns, user_id, session_id, tags, response_time_ms, metadata
FROM usage_records`
