// Command token mints an admin JWT for the gRPC and HTTP admin surfaces.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/server/auth"
)

func main() {
	secret := flag.String("s", os.Getenv("SECRET_KEY"), "JWT HMAC secret key")
	validity := flag.Duration("t", time.Hour, "token validity")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "secret key is required (-s or SECRET_KEY)")
		os.Exit(2)
	}

	tok, err := auth.GenerateToken(auth.AdminSubject, []byte(*secret), *validity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
