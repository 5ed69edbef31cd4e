package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS datasets (
    source               TEXT PRIMARY KEY,
    topic                TEXT NOT NULL,
    row_count            INTEGER NOT NULL,
    fetched_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS observations (
    source               TEXT NOT NULL REFERENCES datasets(source) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    year                 INTEGER NOT NULL,
    category             TEXT NOT NULL,
    pct_gdp              REAL NOT NULL,
    PRIMARY KEY (source, seq)
);

CREATE INDEX IF NOT EXISTS idx_observations_category ON observations(source, category);
`
