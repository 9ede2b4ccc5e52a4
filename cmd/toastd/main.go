// Package main is the entry point for the toastd demo driver.
package main

func main() {
	Execute()
}
