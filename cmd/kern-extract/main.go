package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/faanross/simulacra_pdf/internal/config"
	"github.com/faanross/simulacra_pdf/internal/decoder"
	"github.com/faanross/simulacra_pdf/internal/scrypto"
	"github.com/faanross/simulacra_pdf/internal/spec"
)

func main() {
	// Command line arguments
	inputFile := flag.String("input", "", "Path to normalized (QDF) PDF text")
	outputFile := flag.String("output", "", "Save extracted message to file")
	key := flag.String("key", "", "Stego key (prompt if not provided)")
	tryList := flag.String("trylist", "", "Comma-separated keys to try")
	nbits := flag.Int("nbits", spec.DEFAULT_BIT_DEPTH, "Number of bits per numeral")
	redundancy := flag.Float64("redundancy", spec.DEFAULT_REDUNDANCY, "Redundancy parameter, strictly between 0 and 1")
	improve := flag.Bool("improve", false, "Use algorithm improvements")
	customRange := flag.Bool("custom-range", false, "Only use values in [-447,-257] without [-336,-321] (rejected without -improve)")
	seal := flag.Bool("seal", false, "The message was sealed with a passphrase")
	passphrase := flag.String("passphrase", "", "Sealing passphrase (prompt if not provided)")
	debug := flag.Bool("debug", false, "Print recovered numerals and counters")
	verbose := flag.Bool("verbose", false, "Show full extracted message")

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
	)
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	fmt.Println("\n🔍 Kerning Steganography Decoder")
	fmt.Println("=" + strings.Repeat("=", 40))

	text, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("❌ Error reading file: %v", err)
	}
	fmt.Printf("\n📄 Input file: %s (%d bytes)\n", *inputFile, len(text))

	var result *decoder.ExtractedMessage

	if *tryList != "" {
		// Try multiple keys mode
		keys := strings.Split(*tryList, ",")
		fmt.Printf("\n🔑 Trying %d keys:\n", len(keys))

		msg, found, attempts, err := decoder.TryKeys(string(text), cfg, keys)
		for i, a := range attempts {
			if a.Err != nil {
				fmt.Printf("   Attempt %d/%d: ❌ %v\n", i+1, len(keys), a.Err)
			} else {
				fmt.Printf("   Attempt %d/%d: ✅ %q\n", i+1, len(keys), found)
			}
		}
		if err != nil {
			log.Fatal("❌ All keys failed")
		}
		result = msg
	} else {
		stegoKey := []byte(*key)
		if len(stegoKey) == 0 {
			stegoKey, err = scrypto.GetSecret("\n🔑 Enter stego key: ", 1)
			if err != nil {
				log.Fatalf("❌ Key error: %v", err)
			}
		}

		stegoDecoder, err := decoder.NewKernDecoder(cfg, stegoKey)
		if err != nil {
			log.Fatalf("❌ Decoder setup failed: %v", err)
		}

		result, err = stegoDecoder.Extract(string(text))
		if err != nil {
			log.Fatalf("❌ Extraction failed: %v", explain(err))
		}
	}

	if *debug {
		fmt.Printf("\n🧮 Recovered Numerals:\n")
		fmt.Printf("   CheckStr (%d): %v\n", len(result.Checksum), result.Checksum)
		fmt.Printf("   Data (%d): %v\n", len(result.Embedded), result.Embedded)
		fmt.Printf("   End position: %d\n", result.MarkerAt+spec.DIGEST_NUMERALS-1)
	}

	fmt.Printf("\n📊 Extraction Statistics:\n")
	fmt.Printf("   Kerning values: %d\n", result.Literals)
	fmt.Printf("   Eligible carriers: %d\n", result.TotalCandidates)
	fmt.Printf("   Valid carriers: %d\n", result.ValidCandidates)
	fmt.Printf("   Carriers used: %d\n", len(result.Embedded)+spec.FRAME_NUMERALS)
	fmt.Printf("   Carriers used for data: %d\n", len(result.Embedded))

	payload := result.Message
	if *seal {
		pass := []byte(*passphrase)
		if len(pass) == 0 {
			pass, err = scrypto.GetSecret("\n🔐 Enter sealing passphrase: ", 1)
			if err != nil {
				log.Fatalf("❌ Passphrase error: %v", err)
			}
		}
		payload, err = scrypto.Open(payload, pass)
		if err != nil {
			log.Fatalf("❌ Unsealing failed: %v", err)
		}
		fmt.Printf("\n🔓 Unsealed: %d → %d bytes\n", len(result.Message), len(payload))
	}

	// Display message
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📝 EXTRACTED MESSAGE:")
	fmt.Println(strings.Repeat("=", 60))

	message := string(payload)
	if *verbose || len(message) <= 500 {
		fmt.Println(message)
	} else {
		// Show preview for long messages
		fmt.Printf("%s\n... [%d more characters] ...\n%s\n",
			message[:200],
			len(message)-400,
			message[len(message)-200:])
		fmt.Printf("\n(Use -verbose flag to see full message)\n")
	}

	fmt.Println(strings.Repeat("=", 60))

	// Save to file if requested
	if *outputFile != "" {
		err = os.WriteFile(*outputFile, payload, 0644)
		if err != nil {
			log.Fatalf("❌ Error saving output: %v", err)
		}
		fmt.Printf("\n💾 Message saved to: %s\n", *outputFile)
	}

	fmt.Println("\n✅ Extraction complete!")
}

// explain adds a hint for the failures a user can act on.
func explain(err error) error {
	switch {
	case errors.Is(err, decoder.ErrMarkerNotFound):
		return fmt.Errorf("%w (check the key and the -nbits/-improve options)", err)
	case errors.Is(err, decoder.ErrChecksumMismatch):
		return fmt.Errorf("%w (document was modified after embedding)", err)
	}
	return err
}
