// Command mineviewer renders a top-down PNG map for every region file in
// a world's region directory.
package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Piripant/mine-viewer/anvil"
	"github.com/Piripant/mine-viewer/config"
	"github.com/Piripant/mine-viewer/render"
	"github.com/Piripant/mine-viewer/resources"
)

const (
	defaultRegionDir      = "region"
	defaultOutputDir      = "images"
	defaultBlockstatesDir = "assets/blockstates"
	defaultModelsDir      = "assets/models"
	defaultTexturesDir    = "assets/textures"
	ignoreBlocksFile      = "ignore_blocks.json"
	biomeBlocksFile       = "biome_blocks.json"
)

func main() {
	var (
		regionDir      string
		outputDir      string
		blockstatesDir string
		modelsDir      string
		texturesDir    string
		settingsDir    string
		useTextures    bool
		onlyUpdated    bool
		workers        int
	)

	rootCmd := &cobra.Command{
		Use:   "mineviewer",
		Short: "Renders a top-down view of a Minecraft world to PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				regionDir:      regionDir,
				outputDir:      outputDir,
				blockstatesDir: blockstatesDir,
				modelsDir:      modelsDir,
				texturesDir:    texturesDir,
				settingsDir:    settingsDir,
				useTextures:    useTextures,
				onlyUpdated:    onlyUpdated,
				workers:        workers,
			})
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&regionDir, "region", "r", defaultRegionDir, "region folder to read .mca files from")
	flags.StringVarP(&outputDir, "output", "o", defaultOutputDir, "folder to write rendered PNGs to")
	flags.StringVar(&blockstatesDir, "blockstates", defaultBlockstatesDir, "blockstate JSON directory")
	flags.StringVar(&modelsDir, "models", defaultModelsDir, "model JSON directory")
	flags.StringVar(&texturesDir, "textures-dir", defaultTexturesDir, "texture PNG directory")
	flags.StringVar(&settingsDir, "settings", ".", "directory holding ignore_blocks.json and biome_blocks.json")
	flags.BoolVarP(&useTextures, "textures", "t", false, "render full textures instead of averaged pixels")
	flags.BoolVarP(&onlyUpdated, "update", "u", false, "only render regions newer than their existing output")
	flags.IntVarP(&workers, "workers", "w", 4, "number of region files rendered concurrently")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type runOptions struct {
	regionDir      string
	outputDir      string
	blockstatesDir string
	modelsDir      string
	texturesDir    string
	settingsDir    string
	useTextures    bool
	onlyUpdated    bool
	workers        int
}

func run(opts runOptions) error {
	ignore, err := config.LoadIgnoreBlocks(filepath.Join(opts.settingsDir, ignoreBlocksFile))
	if err != nil {
		return fmt.Errorf("loading ignore blocks: %w", err)
	}

	tints, err := config.LoadBiomeBlocks(filepath.Join(opts.settingsDir, biomeBlocksFile))
	if err != nil {
		return fmt.Errorf("loading biome blocks: %w", err)
	}

	props, err := resources.BuildGraphicPropertyIndex(opts.blockstatesDir)
	if err != nil {
		return fmt.Errorf("building graphic property index: %w", err)
	}

	cache := resources.NewAppearanceCache(opts.blockstatesDir, opts.modelsDir, opts.texturesDir, tints)

	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(opts.regionDir)
	if err != nil {
		return fmt.Errorf("reading region directory: %w", err)
	}

	jobs := make([]renderJob, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		outputPath := filepath.Join(opts.outputDir, entry.Name()+".png")
		if opts.onlyUpdated && !needsUpdate(filepath.Join(opts.regionDir, entry.Name()), outputPath) {
			continue
		}
		jobs = append(jobs, renderJob{
			name:       entry.Name(),
			regionPath: filepath.Join(opts.regionDir, entry.Name()),
			outputPath: outputPath,
		})
	}

	if len(jobs) == 0 {
		fmt.Println("nothing to render")
		return nil
	}

	bar := progressbar.Default(int64(len(jobs)), "rendering regions")

	workerCount := opts.workers
	if workerCount < 1 {
		workerCount = 1
	}

	jobCh := make(chan renderJob)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []string

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := renderRegion(job, props, ignore, cache, opts.useTextures); err != nil {
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: %v", job.name, err))
					mu.Unlock()
				}
				bar.Add(1)
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	for _, failure := range failures {
		fmt.Fprintln(os.Stderr, "region failed:", failure)
	}

	return nil
}

type renderJob struct {
	name       string
	regionPath string
	outputPath string
}

// needsUpdate reports whether the region file is newer than its existing
// output image, so a prior run's outputs can be left alone and only
// regions that changed since the last render get redone.
func needsUpdate(regionPath, outputPath string) bool {
	outputInfo, err := os.Stat(outputPath)
	if err != nil {
		return true
	}
	regionInfo, err := os.Stat(regionPath)
	if err != nil {
		return true
	}
	return regionInfo.ModTime().After(outputInfo.ModTime())
}

// renderRegion decodes one region file and writes its rendered PNG. A
// region that fails to decode renders as an empty (all-air) region rather
// than aborting the run: one corrupt .mca file should not stop the rest
// of the world from being rendered.
func renderRegion(job renderJob, props resources.GraphicPropertyIndex, ignore render.IgnoreSet, cache *resources.AppearanceCache, useTextures bool) error {
	region, err := anvil.FromFile(job.regionPath, props)
	if err != nil {
		region = &anvil.Region{}
	}

	var img image.Image
	if useTextures {
		img = render.Textures(region, ignore, cache)
	} else {
		img = render.Pixels(region, ignore, cache)
	}

	return writePNG(job.outputPath, img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
