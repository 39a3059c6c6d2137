package main

import (
	"fmt"
	"io"
	"os"

	"github.com/oisee/polydist/pkg/analysis"
	"github.com/oisee/polydist/pkg/polyfile"
	"github.com/oisee/polydist/pkg/report"
	"github.com/oisee/polydist/pkg/sizeparse"
	"github.com/oisee/polydist/pkg/term"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		blocklen      int
		degree        int
		tvsizeStr     string
		rounds        int
		topK          int
		combRandom    int
		combDeg       int
		conf          float64
		allDeg        bool
		noCombXOR     bool
		noCombAND     bool
		noAllDegEval  bool
		refFile       string
		polyInline    []string
		polyFiles     []string
		polyPolicyStr string
		seed          uint64
		workers       int
		checkpoint    string
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Evaluate monomials/polynomials over one or more files and report z-score distinguishers",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := polyfile.ParsePolicy(polyPolicyStr)
			if err != nil {
				return err
			}
			tvsize, err := sizeparse.Parse(tvsizeStr)
			if err != nil {
				return fmt.Errorf("--tv: %w", err)
			}

			var inputPolys []term.Poly
			for _, s := range polyInline {
				p, err := polyfile.Decode([]byte(s), blocklen, policy)
				if err != nil {
					return fmt.Errorf("--poly %q: %w", s, err)
				}
				if p != nil {
					inputPolys = append(inputPolys, p)
				}
			}
			for _, path := range polyFiles {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("--poly-file %q: %w", path, err)
				}
				ps, err := polyfile.LoadFile(f, blocklen, policy)
				f.Close()
				if err != nil {
					return fmt.Errorf("--poly-file %q: %w", path, err)
				}
				inputPolys = append(inputPolys, ps...)
			}

			cfg := analysis.Config{
				Blocklen:      blocklen,
				Degree:        degree,
				TopComb:       combDeg,
				CombRandom:    combRandom,
				Seed:          seed,
				ZScoreThresh:  conf,
				CombineAllDeg: allDeg,
				NoCombXOR:     noCombXOR,
				NoCombAND:     noCombAND,
				AllDegCompute: !noAllDegEval,
				DoRef:         refFile != "",
				InputPolys:    inputPolys,
				NumWorkers:    workers,
			}
			if topK >= 0 {
				cfg.TopK = &topK
			}

			if checkpoint != "" && len(args) > 1 {
				return fmt.Errorf("--checkpoint only supports a single input file")
			}

			a, err := analysis.New(cfg)
			if err != nil {
				return err
			}
			a.SetReporter(report.NewLineReporter(os.Stdout))

			var offset int64
			if checkpoint != "" {
				if ck, err := loadCheckpoint(checkpoint); err == nil {
					a.Restore(ck.Snap)
					offset = ck.Offset
					if verbose {
						fmt.Fprintf(os.Stderr, "resuming from checkpoint at offset %d\n", offset)
					}
				}
			}

			files := args
			stdinOnly := len(files) == 0

			var refR io.Reader
			var refFh *os.File
			if refFile != "" {
				refFh, err = os.Open(refFile)
				if err != nil {
					return fmt.Errorf("--ref %q: %w", refFile, err)
				}
				defer refFh.Close()
				if offset > 0 {
					if _, err := refFh.Seek(offset, io.SeekStart); err != nil {
						return err
					}
				}
				refR = refFh
			}

			processOne := func(name string, r io.Reader, size int64) error {
				buf := make([]byte, tvsize)
				var refBuf []byte
				if refR != nil {
					refBuf = make([]byte, tvsize)
				}
				round := 0
				var consumed int64
				for {
					if rounds > 0 && round >= rounds {
						break
					}
					n, rerr := io.ReadFull(r, buf)
					if n == 0 {
						break
					}
					chunk := buf[:n]

					var refChunk []byte
					if refR != nil {
						rn, _ := io.ReadFull(refR, refBuf[:n])
						refChunk = refBuf[:rn]
					}

					if _, err := a.ProcessChunk(chunk, refChunk); err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					round++
					consumed += int64(n)

					if verbose && size > 0 {
						fmt.Fprintf(os.Stderr, "  %s: %d/%d bytes (%.1f%%)\n",
							name, offset+consumed, size, 100*float64(offset+consumed)/float64(size))
					}
					if checkpoint != "" {
						if err := saveCheckpoint(checkpoint, &Checkpoint{
							Offset: offset + consumed,
							Snap:   a.Snapshot(),
						}); err != nil {
							return fmt.Errorf("checkpoint: %w", err)
						}
					}

					if rerr == io.ErrUnexpectedEOF || rerr == io.EOF {
						break
					}
					if rerr != nil {
						return fmt.Errorf("%s: %w", name, rerr)
					}
				}
				return nil
			}

			if stdinOnly {
				if err := processOne("<stdin>", os.Stdin, 0); err != nil {
					return err
				}
			} else {
				for _, path := range files {
					f, err := os.Open(path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					info, _ := f.Stat()
					var size int64
					if info != nil {
						size = info.Size()
					}
					if offset > 0 {
						if _, err := f.Seek(offset, io.SeekStart); err != nil {
							f.Close()
							return err
						}
					}
					err = processOne(path, f, size)
					f.Close()
					if err != nil {
						return err
					}
				}
			}

			a.Finished()
			if checkpoint != "" {
				os.Remove(checkpoint)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&blocklen, "block", 128, "block size in bits")
	cmd.Flags().IntVar(&degree, "degree", 3, "maximum monomial degree")
	cmd.Flags().StringVar(&tvsizeStr, "tv", "256Ki", "test-vector (chunk) size, e.g. 3M or 4Ki")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "maximum number of chunks to read (0 = unlimited)")
	cmd.Flags().IntVar(&topK, "top", 30, "top-K best monomials to seed combination search (negative disables)")
	cmd.Flags().IntVar(&combRandom, "comb-rand", 0, "extra random monomials injected into the combination pool")
	cmd.Flags().IntVar(&combDeg, "combine-deg", 2, "maximum arity of XOR/AND combinations")
	cmd.Flags().Float64Var(&conf, "conf", 1.96, "z-score failing threshold")
	cmd.Flags().BoolVar(&allDeg, "alldeg", false, "seed the combination pool from every degree, not just the top one")
	cmd.Flags().BoolVar(&noCombXOR, "no-comb-xor", false, "disable XOR combinations")
	cmd.Flags().BoolVar(&noCombAND, "no-comb-and", false, "disable AND combinations")
	cmd.Flags().BoolVar(&noAllDegEval, "poly-only", false, "skip the full degree ladder, only evaluate --poly/--poly-file polynomials")
	cmd.Flags().StringVar(&refFile, "ref", "", "reference file with known-random data")
	cmd.Flags().StringArrayVar(&polyInline, "poly", nil, "input polynomial to evaluate, in JSON array notation")
	cmd.Flags().StringArrayVar(&polyFiles, "poly-file", nil, "file with polynomials to test, one per line, JSON array notation")
	cmd.Flags().StringVar(&polyPolicyStr, "poly-var-policy", "fail", "out-of-range polynomial variable policy: fail, ignore, or mod")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for comb-rand sampling")
	cmd.Flags().IntVar(&workers, "workers", 0, "combination-search worker count (0 = NumCPU)")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "checkpoint file for resuming a long run")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose progress output")

	return cmd
}
