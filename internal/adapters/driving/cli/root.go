// Package cli implements the pdfdex command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/pdfdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfdex/internal/adapters/driven/extractor/ocr"
	pdfextractor "github.com/custodia-labs/pdfdex/internal/adapters/driven/extractor/pdf"
	"github.com/custodia-labs/pdfdex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfdex/internal/adapters/driven/thumbnail"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driving"
	"github.com/custodia-labs/pdfdex/internal/core/services"
	"github.com/custodia-labs/pdfdex/internal/logger"
)

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Wired services, populated by ensureServices.
var (
	configStore     *configfile.ConfigStore
	appConfig       configfile.Config
	docStore        *sqlite.Store
	thumbnails      driven.ThumbnailStore
	indexerService  driving.Indexer
	searchService   driving.SearchService
	documentService driving.DocumentService
)

var rootCmd = &cobra.Command{
	Use:   "pdfdex",
	Short: "Index and search PDF documents in a directory tree",
	Long: `pdfdex maintains a searchable index of the PDF documents under a
directory tree. Documents are identified by content, so moved and
duplicated files are recognised without re-extraction. Run 'pdfdex init'
once, then 'pdfdex index' for a full pass or 'pdfdex watch' to follow
the tree live.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.pdfdex)")
}

// Execute runs the CLI and releases wired resources afterwards.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// loadConfig opens the config store without requiring a configured
// root, for commands that only touch configuration.
func loadConfig() error {
	if configStore != nil {
		return nil
	}
	cs, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = cs
	appConfig = cs.Config()
	return nil
}

// ensureServices wires config, store, adapters and services. Commands
// operating on the index call this first.
func ensureServices() error {
	if indexerService != nil {
		return nil
	}
	if err := loadConfig(); err != nil {
		return err
	}
	if appConfig.RootDir == "" {
		return errors.New("no directory configured; run 'pdfdex init <dir>' first")
	}

	store, err := sqlite.NewStore(appConfig.DataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	docStore = store

	var recognizer driven.Recognizer
	if appConfig.OCREnabled {
		tess := ocr.NewTesseract(appConfig.OCRLang)
		if tess.Available() {
			recognizer = tess
		} else {
			logger.Warn("OCR enabled but tesseract or pdftoppm is not on PATH; continuing without OCR")
		}
	}
	extractor := pdfextractor.NewExtractor(recognizer)

	var renderer driven.PageRenderer
	if poppler := thumbnail.NewPopplerRenderer(); poppler.Available() {
		renderer = poppler
	} else {
		logger.Debug("pdftoppm not found; thumbnails disabled")
	}
	thumbs, err := thumbnail.NewCache(appConfig.CacheDir, renderer)
	if err != nil {
		return fmt.Errorf("opening thumbnail cache: %w", err)
	}
	thumbnails = thumbs

	indexerService = services.NewIndexerService(store, extractor, thumbs, appConfig.RootDir, appConfig.BatchSize)
	searchService = services.NewSearchQueryService(store)
	documentService = services.NewDocumentService(store)
	return nil
}

// closeServices releases everything ensureServices opened.
func closeServices() {
	if docStore != nil {
		if err := docStore.Close(); err != nil {
			logger.Warn("Closing document store: %v", err)
		}
		docStore = nil
	}
}
