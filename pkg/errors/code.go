package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Submission archive & structure errors
// 12000-12999: Build errors
// 13000-13999: Corpus, execution & packaging errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalError ErrorCode = 10001
	InvalidParams ErrorCode = 10002
	NotFound      ErrorCode = 10003
	Timeout       ErrorCode = 10004

	// Validation errors (10300-10399)
	ValidationFailed ErrorCode = 10300

	// ========== Submission Archive & Structure Errors (11000-11999) ==========

	// Archive handling (11000-11099)
	ArchiveOpenFailed    ErrorCode = 11000
	ArchiveFormatUnknown ErrorCode = 11001
	ArchiveExtractFailed ErrorCode = 11002
	ArchiveEntryUnsafe   ErrorCode = 11003

	// Structure validation (11100-11199)
	ManifestMissing        ErrorCode = 11100
	ManifestInvalid        ErrorCode = 11101
	BuildRootMissing       ErrorCode = 11102
	BuildDescriptorMissing ErrorCode = 11103

	// ========== Build Errors (12000-12999) ==========

	BuildFailed      ErrorCode = 12000
	BuildStartFailed ErrorCode = 12001
	ArtifactMissing  ErrorCode = 12100

	// ========== Corpus, Execution & Packaging Errors (13000-13999) ==========

	CorpusInvalid     ErrorCode = 13000
	DuplicateTestCase ErrorCode = 13001
	ExecutionFailed   ErrorCode = 13100
	PackagingFailed   ErrorCode = 13200
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success:          "Success",
	InternalError:    "Internal error",
	InvalidParams:    "Invalid parameters",
	NotFound:         "Resource not found",
	Timeout:          "Operation timed out",
	ValidationFailed: "Validation failed",

	ArchiveOpenFailed:    "Failed to open submission archive",
	ArchiveFormatUnknown: "Unknown submission archive format",
	ArchiveExtractFailed: "Failed to extract submission archive",
	ArchiveEntryUnsafe:   "Submission archive contains an unsafe entry path",

	ManifestMissing:        "Manifest file is missing from the submission",
	ManifestInvalid:        "Manifest file is invalid",
	BuildRootMissing:       "Build root directory is missing from the submission",
	BuildDescriptorMissing: "Build descriptor is missing from the build root",

	BuildFailed:      "Build failed",
	BuildStartFailed: "Failed to start the build process",
	ArtifactMissing:  "Build reported success but the artifact was not produced",

	CorpusInvalid:     "Test corpus is invalid",
	DuplicateTestCase: "Duplicate test case id within a suite",
	ExecutionFailed:   "Test execution failed",
	PackagingFailed:   "Failed to package the submission",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// IsStructural reports whether the code describes a submission structure
// defect detected before any build was attempted.
func (c ErrorCode) IsStructural() bool {
	return c >= 11100 && c < 11200
}
