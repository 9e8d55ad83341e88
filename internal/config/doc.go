// Package config loads gcalevents settings.
//
// Values come from, in increasing precedence: built-in defaults, a TOML
// file, and environment variables. A .env file in the working directory is
// read into the environment first. The TOML file is the --config path when
// given, else ./.gcalevents.toml, else $HOME/.config/gcalevents/config.toml.
package config
