package main

import (
	"fmt"

	_ "github.com/vitalsync/go-common/cache"
	_ "github.com/vitalsync/go-common/logger"
)

func main() {
	fmt.Println("Hi")
}
