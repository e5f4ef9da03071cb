package mysql

const createKVSQL = `
CREATE TABLE IF NOT EXISTS kv_store (
  namespace  VARCHAR(64)  NOT NULL,
  k          VARCHAR(255) NOT NULL,
  v          JSON         NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (namespace, k)
)`

const getKVSQL = `SELECT v FROM kv_store WHERE namespace = ? AND k = ?`

const upsertKVSQL = `
INSERT INTO kv_store
  (namespace, k, v)
VALUES
  (?, ?, ?)
ON DUPLICATE KEY UPDATE
  v          = VALUES(v),
  updated_at = CURRENT_TIMESTAMP
`

const deleteKVSQL = `DELETE FROM kv_store WHERE namespace = ? AND k = ?`

const clearKVSQL = `DELETE FROM kv_store WHERE namespace = ?`
