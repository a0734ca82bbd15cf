// Command totpkey prints a fresh TOTP_ENCRYPTION_KEY. With -secret it also
// prints a new TOTP secret, its provisioning URI and the current code, which
// is handy when testing an authenticator app by hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

func main() {
	var (
		withSecret = flag.Bool("secret", false, "also generate a TOTP secret and show its current code")
		issuer     = flag.String("issuer", "Example", "issuer used in the provisioning URI")
		account    = flag.String("account", "user@example.com", "account name used in the provisioning URI")
		check      = flag.String("check", "", "existing Base32 secret to print the current code for")
	)
	flag.Parse()

	log := logger.New(logger.WithDevelopment("totpkey"))

	if *check != "" {
		code, err := totp.GenerateTOTP(*check, time.Now())
		if err != nil {
			log.Error("failed to generate code", logger.Error(err))
			os.Exit(1)
		}
		fmt.Printf("Current code: %s\n", code)
		return
	}

	encodedKey, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		log.Error("failed to generate encoded encryption key", logger.Error(err))
		os.Exit(1)
	}
	fmt.Printf("Generated Encoded Encryption Key (for TOTP_ENCRYPTION_KEY env var): \n---\n%s\n---\n", encodedKey)

	if !*withSecret {
		return
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		log.Error("failed to generate secret", logger.Error(err))
		os.Exit(1)
	}
	uri, err := totp.GetTOTPURI(totp.TOTPParams{Secret: secret, AccountName: *account, Issuer: *issuer})
	if err != nil {
		log.Error("failed to build provisioning URI", logger.Error(err))
		os.Exit(1)
	}
	now := time.Now()
	code, err := totp.GenerateTOTP(secret, now)
	if err != nil {
		log.Error("failed to generate code", logger.Error(err))
		os.Exit(1)
	}

	fmt.Printf("Secret: %s\nURI:    %s\nCode:   %s (valid for %ds)\n",
		secret, uri, code, totp.DefaultPeriod-int(now.Unix()%totp.DefaultPeriod))
}
