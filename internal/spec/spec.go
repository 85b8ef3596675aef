package spec

// Steganography constants
const (
	DEFAULT_BIT_DEPTH  = 4   // Bits carried per kerning value
	MIN_BIT_DEPTH      = 1   // Smallest usable numeral width
	MAX_BIT_DEPTH      = 8   // Largest usable numeral width
	DEFAULT_REDUNDANCY = 0.1 // Target share of carriers spent on noise
	BITS_PER_BYTE      = 8   // Standard byte size
	DIGEST_NUMERALS    = 20  // Numerals in a checksum or end marker (SHA-1 size)
	FRAME_NUMERALS     = 2 * DIGEST_NUMERALS
)

// Logistic map parameters, should be in ]3.57,4[
const (
	MU_FILLER   = 3.7
	MU_SELECTOR = 3.8
)

// Custom range for LaTeX-produced kerning (inclusive bounds)
const (
	SUBRANGE_MIN     = -447
	SUBRANGE_MAX     = -257
	SUBRANGE_GAP_MIN = -336
	SUBRANGE_GAP_MAX = -321
)

// Security constants
const (
	SALT_SIZE    = 32     // Salt for PBKDF2
	NONCE_SIZE   = 12     // GCM nonce size
	KEY_SIZE     = 32     // AES-256 key size
	TAG_SIZE     = 16     // GCM authentication tag
	PBKDF2_ITERS = 100000 // PBKDF2 iterations (adjustable for security/speed)

	// Magic bytes to verify successful decryption
	MAGIC_HEADER = 0xDEADBEEF

	MIN_SECRET_LEN = 8 // Minimum passphrase length for sealing
)

// Keystream labels keep the two enhanced-mode streams independent
const (
	HKDF_SELECTOR_INFO = "simulacra_pdf selector stream"
	HKDF_FILLER_INFO   = "simulacra_pdf filler stream"
)
