package noise

// Category identifies an algorithm namespace in the identifier registry.
// The value doubles as the high byte of every ID in that category.
type Category uint8

// Algorithm categories.
const (
	CategoryPrefix  Category = 'N'
	CategoryPattern Category = 'P'
	CategoryDH      Category = 'D'
	CategoryCipher  Category = 'C'
	CategoryHash    Category = 'H'
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPrefix:
		return "prefix"
	case CategoryPattern:
		return "pattern"
	case CategoryDH:
		return "dh"
	case CategoryCipher:
		return "cipher"
	case CategoryHash:
		return "hash"
	default:
		return "unknown"
	}
}

// ID is a registered algorithm identifier. The high byte is the category,
// the low byte an ordinal within it. The zero value means "not set".
type ID uint16

func makeID(c Category, n uint8) ID { return ID(c)<<8 | ID(n) }

// Category returns the category an ID belongs to.
func (id ID) Category() Category { return Category(id >> 8) }

// Protocol name prefixes.
const (
	PrefixStandard = ID('N')<<8 | 1 // "Noise"
	PrefixPSK      = ID('N')<<8 | 2 // "NoisePSK"
)

// Handshake patterns.
const (
	PatternN ID = ID('P')<<8 | iota + 1
	PatternK
	PatternX
	PatternNN
	PatternNK
	PatternNX
	PatternXN
	PatternXK
	PatternXX
	PatternKN
	PatternKK
	PatternKX
	PatternIN
	PatternIK
	PatternIX
	PatternXXfallback
)

// Diffie-Hellman functions.
const (
	DH25519 ID = ID('D')<<8 | iota + 1
	DH448
	DHNewHope
)

// AEAD ciphers.
const (
	CipherChaChaPoly ID = ID('C')<<8 | iota + 1
	CipherAESGCM
)

// Hash functions.
const (
	HashBLAKE2s ID = ID('H')<<8 | iota + 1
	HashBLAKE2b
	HashSHA256
	HashSHA512
)

type patternInfo struct {
	name   string
	oneWay bool
}

var patterns = map[ID]patternInfo{
	PatternN:          {"N", true},
	PatternK:          {"K", true},
	PatternX:          {"X", true},
	PatternNN:         {"NN", false},
	PatternNK:         {"NK", false},
	PatternNX:         {"NX", false},
	PatternXN:         {"XN", false},
	PatternXK:         {"XK", false},
	PatternXX:         {"XX", false},
	PatternKN:         {"KN", false},
	PatternKK:         {"KK", false},
	PatternKX:         {"KX", false},
	PatternIN:         {"IN", false},
	PatternIK:         {"IK", false},
	PatternIX:         {"IX", false},
	PatternXXfallback: {"XXfallback", false},
}

var names = map[ID]string{
	PrefixStandard: "Noise",
	PrefixPSK:      "NoisePSK",

	DH25519:   "25519",
	DH448:     "448",
	DHNewHope: "NewHope",

	CipherChaChaPoly: "ChaChaPoly",
	CipherAESGCM:     "AESGCM",

	HashBLAKE2s: "BLAKE2s",
	HashBLAKE2b: "BLAKE2b",
	HashSHA256:  "SHA256",
	HashSHA512:  "SHA512",
}

var idsByName map[string]ID

func init() {
	for id, info := range patterns {
		names[id] = info.name
	}
	idsByName = make(map[string]ID, len(names))
	for id, name := range names {
		idsByName[name] = id
	}
}

// NameOf returns the canonical human-readable name for id within category,
// or "" if the identifier is not registered there.
func NameOf(c Category, id ID) string {
	if id.Category() != c {
		return ""
	}
	return names[id]
}

// IDOf returns the identifier registered for name within category, or 0.
func IDOf(c Category, name string) ID {
	id, ok := idsByName[name]
	if !ok || id.Category() != c {
		return 0
	}
	return id
}

// OneWay reports whether id names a one-way handshake pattern, i.e. one
// where only the initiator ever sends and no responder ephemeral exists.
func OneWay(id ID) bool {
	return patterns[id].oneWay
}
