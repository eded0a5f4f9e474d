package schema

// VersionSetting is an immutable-after-construction mapping from type to
// serialization version: the hard-fork profile of the blockchain archive, and
// the dump-side version override of Boost archives. Keys follow Spec.Key().
type VersionSetting struct {
	m map[string]uint32
}

func NewVersionSetting() *VersionSetting {
	return &VersionSetting{m: map[string]uint32{}}
}

func (vs *VersionSetting) Set(sp *Spec, version uint32) *VersionSetting {
	vs.m[sp.Key()] = version
	return vs
}

func (vs *VersionSetting) Get(sp *Spec) (uint32, bool) {
	if vs == nil {
		return 0, false
	}
	v, ok := vs.m[sp.Key()]
	return v, ok
}

// VersionDB records which types had their version emitted or consumed in one
// Boost archive. It lives exactly as long as its archive and is never shared.
type VersionDB struct {
	m map[string]dbEntry
}

type dbEntry struct {
	track   uint32
	version uint32
}

func NewVersionDB() *VersionDB {
	return &VersionDB{m: map[string]dbEntry{}}
}

func (db *VersionDB) Has(sp *Spec) bool {
	_, ok := db.m[sp.Key()]
	return ok
}

func (db *VersionDB) Get(sp *Spec) (track, version uint32, ok bool) {
	e, ok := db.m[sp.Key()]
	return e.track, e.version, ok
}

// Put stores the first-seen version; later occurrences of the same key are
// ignored, matching the read-once-per-type contract.
func (db *VersionDB) Put(sp *Spec, track, version uint32) {
	if db.Has(sp) {
		return
	}
	db.m[sp.Key()] = dbEntry{track: track, version: version}
}
