package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrQuizNotFound ErrCode = "QUIZ_NOT_FOUND"

	// ─── AI Collaborator ───────────────────────────────────────────────
	ErrGenerationInvalidFormat ErrCode = "GENERATION_INVALID_FORMAT"
	ErrAIUpstream              ErrCode = "AI_UPSTREAM_FAILURE"

	// ─── Video Room Provider ───────────────────────────────────────────
	ErrRoomProvider ErrCode = "ROOM_PROVIDER_FAILURE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrQuizNotFound:
		return "Kuis tidak ditemukan."

	// ─── AI Collaborator ───────────────────────────────────────────────
	case ErrGenerationInvalidFormat:
		return "Layanan AI mengembalikan format yang tidak valid. Silakan coba lagi."
	case ErrAIUpstream:
		return "Layanan AI sedang tidak tersedia. Silakan coba lagi nanti."

	// ─── Video Room Provider ───────────────────────────────────────────
	case ErrRoomProvider:
		return "Layanan ruang video sedang tidak tersedia."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
