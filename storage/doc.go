// Package storage is the typed key/value façade guest programs use to
// persist state in host storage.
//
// Scalar fields are addressed by their name. Map entries are addressed by a
// namespace and a typed key:
//
//	st := storage.New(host.DefaultTransit(), self)
//	_ = st.Set("count", value.Int(42))
//	_ = st.SetMap("balances", value.AddressOf(addr), value.Int(100))
//	bal, err := st.MapInt("balances", value.AddressOf(addr))
//
// Stored bytes are tagged value encodings, so every read is validated
// before it reaches the caller.
//
// Scalar and map keys share one keyspace per owner. A scalar name that
// happens to equal a map key's bytes addresses the same entry; programs keep
// scalar names printable to stay clear of the binary map prefix.
package storage
