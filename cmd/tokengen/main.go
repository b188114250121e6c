package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/vncsmyrnk/governance/internal/adapters/auth/jwt"
	"github.com/vncsmyrnk/governance/internal/config"
	"github.com/vncsmyrnk/governance/internal/core/domain"
)

func main() {
	account := flag.String("account", "", "Account id to issue the token for")
	ttl := flag.Duration("ttl", 15*time.Minute, "Token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	authority, err := jwt.NewAuthority(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	token, err := authority.Issue(domain.AccountID(*account), *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
