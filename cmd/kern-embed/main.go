package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/faanross/simulacra_pdf/internal/carrier"
	"github.com/faanross/simulacra_pdf/internal/config"
	"github.com/faanross/simulacra_pdf/internal/encoder"
	"github.com/faanross/simulacra_pdf/internal/scrypto"
	"github.com/faanross/simulacra_pdf/internal/spec"
)

func main() {
	// Command line arguments
	inputFile := flag.String("input", "", "Path to normalized (QDF) PDF text")
	outputFile := flag.String("output", "", "Output file (default <input>.out)")
	key := flag.String("key", "", "Stego key (prompt if not provided)")
	message := flag.String("message", "", "Message to embed (stdin if not provided)")
	messageFile := flag.String("message-file", "", "Read the message from a file")
	nbits := flag.Int("nbits", spec.DEFAULT_BIT_DEPTH, "Number of bits per numeral")
	redundancy := flag.Float64("redundancy", spec.DEFAULT_REDUNDANCY, "Redundancy parameter, strictly between 0 and 1")
	improve := flag.Bool("improve", false, "Use algorithm improvements")
	noRandom := flag.Bool("no-random", false, "Keep original values instead of embedding random noise")
	customRange := flag.Bool("custom-range", false, "Only use values in [-447,-257] without [-336,-321] (rejected without -improve)")
	seal := flag.Bool("seal", false, "Encrypt the message with a passphrase before embedding")
	passphrase := flag.String("passphrase", "", "Sealing passphrase (prompt if not provided)")
	analyze := flag.Bool("analyze", false, "Show carrier analysis only")
	debug := flag.Bool("debug", false, "Print numeral plan and counters")

	flag.Parse()

	// Validate input
	if *inputFile == "" {
		log.Fatal("❌ Please provide normalized PDF text with -input flag")
	}

	cfg, err := config.New(
		config.WithBitDepth(*nbits),
		config.WithRedundancy(*redundancy),
		config.WithEnhanced(*improve),
		config.WithSubRange(*customRange),
		config.WithKeepOriginalNoise(*noRandom),
	)
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	fmt.Println("\n🖋️  Kerning Steganography Encoder")
	fmt.Println("=" + strings.Repeat("=", 40))

	text, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("❌ Error reading file: %v", err)
	}
	fmt.Printf("\n📄 Input file: %s (%d bytes)\n", *inputFile, len(text))

	if *analyze || *debug {
		a, err := carrier.Analyze(context.Background(), string(text), cfg)
		if err != nil {
			log.Fatalf("❌ Analysis failed: %v", err)
		}
		printAnalysis(a, cfg)
		if *analyze {
			return
		}
	}

	payload, err := readMessage(*message, *messageFile)
	if err != nil {
		log.Fatalf("❌ Message error: %v", err)
	}
	fmt.Printf("   Message: %d bytes\n", len(payload))

	stegoKey := []byte(*key)
	if len(stegoKey) == 0 {
		stegoKey, err = scrypto.GetSecret("\n🔑 Enter stego key: ", 1)
		if err != nil {
			log.Fatalf("❌ Key error: %v", err)
		}
	}

	if *seal {
		payload, err = sealPayload(payload, *passphrase)
		if err != nil {
			log.Fatalf("❌ Sealing failed: %v", err)
		}
	}

	stegoEncoder, err := encoder.NewKernEncoder(cfg, payload, stegoKey)
	if err != nil {
		log.Fatalf("❌ Encoder setup failed: %v", err)
	}

	if *debug {
		plan := stegoEncoder.Plan()
		fmt.Printf("\n🧮 Numeral Plan:\n")
		fmt.Printf("   CheckStr (%d): %v\n", len(plan.Checksum), plan.Checksum)
		fmt.Printf("   Data (%d): %v\n", len(plan.Payload), plan.Payload)
		fmt.Printf("   End marker (%d): %v\n", len(plan.Marker), plan.Marker)
	}

	result, err := stegoEncoder.Embed(string(text))
	if err != nil {
		log.Fatalf("❌ Embedding failed: %v", err)
	}

	fmt.Printf("\n📊 Embedding Statistics:\n")
	fmt.Printf("   Kerning values: %d\n", result.Literals)
	fmt.Printf("   Eligible carriers: %d\n", result.TotalCandidates)
	fmt.Printf("   Carriers used: %d\n", result.ValidCandidates)
	fmt.Printf("   Carriers used for data: %d\n", len(result.Plan.Payload))
	if len(result.SignFlips) > 0 {
		fmt.Printf("   ⚠️  Sign flips at carriers %v\n", result.SignFlips)
	}

	out := *outputFile
	if out == "" {
		out = *inputFile + ".out"
	}
	if err := os.WriteFile(out, []byte(result.Text), 0644); err != nil {
		log.Fatalf("❌ Cannot write output file: %v", err)
	}

	fmt.Printf("\n✅ Embedding complete!\n")
	fmt.Printf("   Output: %s\n", out)
	fmt.Printf("   Mode: %s, %d bits, redundancy %.2f\n", mode(cfg), cfg.BitDepth, cfg.Redundancy)
	fmt.Printf("\n🔧 Repair and recompress the output into a PDF before sharing it\n")
}

// readMessage takes the message from the flag, a file, or piped stdin.
func readMessage(message, path string) ([]byte, error) {
	switch {
	case message != "":
		return []byte(message), nil
	case path != "":
		return os.ReadFile(path)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		return io.ReadAll(os.Stdin)
	}
	return nil, fmt.Errorf("no message given (use -message, -message-file or stdin)")
}

func sealPayload(payload []byte, passphrase string) ([]byte, error) {
	pass := []byte(passphrase)
	if len(pass) == 0 {
		var err error
		pass, err = scrypto.GetSecret("🔐 Enter sealing passphrase (min 8 chars): ", spec.MIN_SECRET_LEN)
		if err != nil {
			return nil, err
		}
		confirm, err := scrypto.GetSecret("🔐 Confirm passphrase: ", spec.MIN_SECRET_LEN)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(pass, confirm) {
			return nil, fmt.Errorf("passphrases do not match")
		}
	} else if len(pass) < spec.MIN_SECRET_LEN {
		return nil, fmt.Errorf("passphrase must be at least %d characters", spec.MIN_SECRET_LEN)
	}

	sealed, err := scrypto.Seal(payload, pass)
	if err != nil {
		return nil, err
	}
	fmt.Printf("\n🔐 Sealed with AES-256-GCM + PBKDF2-%d: %d → %d bytes\n",
		spec.PBKDF2_ITERS, len(payload), len(sealed))
	return sealed, nil
}

func mode(cfg config.Config) string {
	if cfg.Enhanced {
		return "improved"
	}
	return "original"
}

func printAnalysis(a *carrier.Analysis, cfg config.Config) {
	fmt.Printf("\n🔎 Carrier Analysis:\n")
	fmt.Printf("   Kerning values: %d\n", a.Literals)
	fmt.Printf("   Eligible (%s mode): %d\n", mode(cfg), a.Eligible)
	if cfg.SubRange {
		fmt.Printf("   In custom range: %d\n", a.InSubRange)
	}
	if a.Eligible > 0 {
		fmt.Printf("   Negative: %.1f%%\n", float64(a.Negative)*100/float64(a.Eligible))
	}
	fmt.Printf("   Low-bit entropy: %.4f bits (max: %d.0)\n", a.ResidueEntropy, cfg.BitDepth)
	fmt.Printf("   Expected capacity: %d numerals (~%d bytes of message)\n",
		a.ExpectedCapacity, a.MaxPayloadBytes)
}
