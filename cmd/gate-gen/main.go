package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"omibyte.io/mcxclk/targets"
)

var (
	chipName  string
	input     string
	outputDir string
)

func init() {
	pflag.StringVarP(&chipName, "chip", "c", "", "chip or series from the built-in target database")
	pflag.StringVarP(&input, "in", "i", "", "target description YAML file, instead of the built-in database")
	pflag.StringVarP(&outputDir, "out", "o", ".", "output directory")
	pflag.Parse()
}

func loadTarget() (targets.TargetInfo, error) {
	if len(input) == 0 {
		return targets.All().Find(chipName)
	}
	buf, err := os.ReadFile(input)
	if err != nil {
		return targets.TargetInfo{}, err
	}
	var target targets.TargetInfo
	if err = yaml.Unmarshal(buf, &target); err != nil {
		return targets.TargetInfo{}, fmt.Errorf("%s: yaml decode error: %v", input, err)
	}
	return target, target.Validate()
}

func main() {
	target, err := loadTarget()
	if err != nil {
		log.Fatal(err)
	}

	pkg := strings.ToLower(chipName)
	if len(pkg) == 0 {
		pkg = strings.ToLower(target.Chips[0])
	}

	dir := filepath.Join(outputDir, pkg)
	if err = os.MkdirAll(dir, 0750); err != nil {
		log.Fatal("file io error: ", err)
	}
	fname := filepath.Join(dir, "gates.go")
	f, err := os.Create(fname)
	if err != nil {
		log.Fatal("file io error: ", err)
	}
	if err = generate(f, pkg, target); err != nil {
		f.Close()
		log.Fatal("generator error: ", err)
	}
	if err = f.Close(); err != nil {
		log.Fatal("file io error: ", err)
	}
	fmt.Printf("Generated %d peripherals for %s in %s\n", len(target.Gates.Entries), target.Series, fname)
}
