// Package completion prints shell completion scripts for fifoattach.
package completion

import (
	"fmt"
	"io"
	"strings"
)

// Shells lists the supported shells.
var Shells = []string{"bash", "zsh", "fish"}

// Write prints the completion script for shell to w.
func Write(w io.Writer, shell string) error {
	var script string
	switch strings.ToLower(shell) {
	case "bash":
		script = BashCompletion
	case "zsh":
		script = ZshCompletion
	case "fish":
		script = FishCompletion
	default:
		return fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(Shells, ", "))
	}
	_, err := io.WriteString(w, script)
	return err
}

// BashCompletion is the bash completion script.
const BashCompletion = `# fifoattach bash completion script
# Installation: fifoattach --completion bash > ~/.local/share/bash-completion/completions/fifoattach

_fifoattach_completion() {
    local cur prev words cword
    _init_completion || return

    local flags="-t --target -c --control -l --log --poll -n --tail --grace -y --yes --no-launch -v --verbose --completion --help"

    case "$prev" in
        -t|--target)
            COMPREPLY=($(compgen -c -- "$cur"))
            return
            ;;
        -c|--control|-l|--log)
            COMPREPLY=($(compgen -f -- "$cur"))
            return
            ;;
        --poll|--grace)
            COMPREPLY=($(compgen -W "500ms 1s 2s 5s" -- "$cur"))
            return
            ;;
        -n|--tail)
            COMPREPLY=($(compgen -W "0 10 30 100" -- "$cur"))
            return
            ;;
        --completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            return
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=($(compgen -W "$flags" -- "$cur"))
    fi
}

complete -F _fifoattach_completion fifoattach
`

// ZshCompletion is the zsh completion script.
const ZshCompletion = `#compdef fifoattach
# Installation: fifoattach --completion zsh > ~/.zsh/completion/_fifoattach

_fifoattach() {
    _arguments \
        '(-t --target)'{-t,--target}'[process name of the target program]:command:_command_names' \
        '(-c --control)'{-c,--control}'[path of the control FIFO]:fifo:_files' \
        '(-l --log)'{-l,--log}'[path of the output log]:log:_files' \
        '--poll[liveness poll interval]:duration:(500ms 1s 2s 5s)' \
        '(-n --tail)'{-n,--tail}'[log lines shown on attach]:lines:(0 10 30 100)' \
        '--grace[wait for the output log after launch]:duration:(1s 2s 5s)' \
        '(-y --yes)'{-y,--yes}'[create a missing control FIFO without asking]' \
        '--no-launch[only attach to an already running target]' \
        '(-v --verbose)'{-v,--verbose}'[diagnostic logging]' \
        '--completion[print a completion script]:shell:(bash zsh fish)' \
        '*:target argument:_files'
}

_fifoattach "$@"
`

// FishCompletion is the fish completion script.
const FishCompletion = `# fifoattach fish completion script
# Installation: fifoattach --completion fish > ~/.config/fish/completions/fifoattach.fish

complete -c fifoattach -s t -l target -d 'Process name of the target program' -xa '(__fish_complete_command)'
complete -c fifoattach -s c -l control -d 'Path of the control FIFO' -rF
complete -c fifoattach -s l -l log -d 'Path of the output log' -rF
complete -c fifoattach -l poll -d 'Liveness poll interval' -xa '500ms 1s 2s 5s'
complete -c fifoattach -s n -l tail -d 'Log lines shown on attach' -xa '0 10 30 100'
complete -c fifoattach -l grace -d 'Wait for the output log after launch' -xa '1s 2s 5s'
complete -c fifoattach -s y -l yes -d 'Create a missing control FIFO without asking'
complete -c fifoattach -l no-launch -d 'Only attach to an already running target'
complete -c fifoattach -s v -l verbose -d 'Diagnostic logging'
complete -c fifoattach -l completion -d 'Print a completion script' -xa 'bash zsh fish'
`
