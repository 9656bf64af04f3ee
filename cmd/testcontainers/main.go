// main.go
//
// Building and document registry data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of opsregistry.
// opsregistry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// opsregistry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with opsregistry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/localnerve/opsregistry/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var image string
	flag.StringVar(&image, "image", "", "MariaDB image (default DB_IMAGE or "+testutil.DefaultMariaDBImage+")")
	flag.Parse()

	usage := `
Run a MariaDB testcontainer for the opsregistry database backend.
The variables that point the server at it are printed once it is ready.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-image IMAGE]

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	mdb, err := testutil.StartMariaDB(ctx, testutil.StdoutLogger, image)
	if err != nil {
		log.Printf("Failed to create test containers: %v\n", err)
		os.Exit(1)
	}
	for _, kv := range mdb.Env() {
		fmt.Println(kv)
	}

	<-ctx.Done()
	log.Printf("\nReceived signal, terminating test containers...\n")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	mdb.Terminate(shutdownCtx, testutil.StdoutLogger)
}
