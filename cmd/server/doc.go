// Command server runs the PBS_Admin backend.
//
// The backend serves the desktop frontend over loopback HTTP: guarded
// file operations under the application's document roots, and database
// backup and restore.
package main
