package extractor

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(javaFiles, xmlFiles int)

	// OnExtractionStart is called before parsing files.
	OnExtractionStart(totalFiles int)

	// OnFileExtracted is called after each file is processed.
	OnFileExtracted(fileName string)

	// OnExtractionComplete is called when extraction finishes.
	OnExtractionComplete(factCount, errorCount int)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                              {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(javaFiles, xmlFiles int)    {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int)               {}
func (n *NoOpProgressReporter) OnFileExtracted(fileName string)                {}
func (n *NoOpProgressReporter) OnExtractionComplete(factCount, errorCount int) {}
