package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	linkService "github.com/allisson/healthshare/internal/link/service"
)

// RunCreateLinkKey generates a cryptographically secure 32-byte server secret
// for sealing share links. Key material is zeroed from memory after encoding.
//
// Without a KMS key URI the key is printed as plain base64 for LINK_KEY. With
// one, the key is wrapped by the KMS keeper first and the wrapped blob is
// printed instead, together with the LINK_KMS_KEY_URI to configure.
//
// For local development, use --kms-key-uri="base64key://<32-byte-base64-key>".
func RunCreateLinkKey(ctx context.Context, kmsKeyURI string) error {
	linkKey := make([]byte, 32)
	if _, err := rand.Read(linkKey); err != nil {
		return fmt.Errorf("failed to generate link key: %w", err)
	}
	defer func() {
		for i := range linkKey {
			linkKey[i] = 0
		}
	}()

	if kmsKeyURI == "" {
		fmt.Println("# Link Key Configuration (plain mode)")
		fmt.Println("# Copy this environment variable to your .env file or secrets manager")
		fmt.Println()
		fmt.Printf("LINK_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(linkKey))
		return nil
	}

	kmsService := linkService.NewKMSService()
	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, linkKey)
	if err != nil {
		return fmt.Errorf("failed to wrap link key with KMS: %w", err)
	}

	fmt.Println("# Link Key Configuration (KMS mode)")
	fmt.Println("# Copy these environment variables to your .env file or secrets manager")
	fmt.Println()
	fmt.Printf("LINK_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))
	fmt.Printf("LINK_KMS_KEY_URI=\"%s\"\n", kmsKeyURI)

	return nil
}
