package sqlite

// migration es una migración de esquema con su versión destino.
type migration struct {
	version int
	sql     string
}

// migrations es la lista ordenada de migraciones; las versiones son
// secuenciales desde 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS usuarios (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL,
	push_token TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS servicios (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	active      INTEGER NOT NULL DEFAULT 1 CHECK(active IN (0, 1)),
	created_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS solicitudes (
	id           TEXT PRIMARY KEY,
	service_id   TEXT NOT NULL REFERENCES servicios(id),
	room_id      TEXT NOT NULL DEFAULT '',
	requester_id TEXT NOT NULL,
	created_at   DATETIME NOT NULL,
	estado       TEXT NOT NULL DEFAULT 'pending' CHECK(estado IN ('pending', 'taken', 'done')),
	comment      TEXT NOT NULL DEFAULT '',
	note         TEXT NOT NULL DEFAULT '',
	final_note   TEXT NOT NULL DEFAULT '',
	agent_id     TEXT,
	source       TEXT NOT NULL DEFAULT 'app'
);

CREATE TABLE IF NOT EXISTS notificaciones (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	body              TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	request_id        TEXT NOT NULL DEFAULT '',
	recipient_user_id TEXT NOT NULL,
	read              INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	pushed            INTEGER NOT NULL DEFAULT 0 CHECK(pushed IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_solicitudes_estado ON solicitudes(estado);
CREATE INDEX IF NOT EXISTS idx_solicitudes_service_id ON solicitudes(service_id);
CREATE INDEX IF NOT EXISTS idx_solicitudes_requester_id ON solicitudes(requester_id);
CREATE INDEX IF NOT EXISTS idx_solicitudes_created_at ON solicitudes(created_at);
CREATE INDEX IF NOT EXISTS idx_notificaciones_recipient ON notificaciones(recipient_user_id);
CREATE INDEX IF NOT EXISTS idx_notificaciones_request ON notificaciones(request_id);
CREATE INDEX IF NOT EXISTS idx_usuarios_role ON usuarios(role);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_notificaciones_sweep
	ON notificaciones(recipient_user_id, read, pushed);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
