package processor

// ArtifactKey derives the storage key for a job's audio artifact. Keys are
// id-addressed so duplicate processing of one job overwrites, never forks.
func ArtifactKey(jobID, contentType string) string {
	return "artifacts/" + jobID + extFor(contentType)
}

func extFor(contentType string) string {
	switch contentType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".bin"
	}
}
